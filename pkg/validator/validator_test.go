package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Gender   string `validate:"omitempty,gender"`
	VoteType string `validate:"omitempty,votetype"`
	FavType  string `validate:"omitempty,favtype"`
	File     string `validate:"omitempty,extension"`
}

func TestRegisterOn(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	assert.NoError(t, v.Struct(sample{Gender: "m", VoteType: "COMMENT", FavType: "book", File: "cover.png"}))
	assert.Error(t, v.Struct(sample{Gender: "X"}))
	assert.Error(t, v.Struct(sample{FavType: "COMMENT"}), "收藏不支持评论")
	assert.Error(t, v.Struct(sample{File: "cover"}))
	assert.Error(t, v.Struct(sample{File: ".png"}))
	assert.Error(t, v.Struct(sample{File: "cover."}))
}

func TestRegister_GinEngine(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register(), "重复注册应覆盖而不是报错")
}
