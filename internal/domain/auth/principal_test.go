package auth

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

type ownedStub struct{ owner uuid.UUID }

func (o *ownedStub) OwnerID() uuid.UUID      { return o.owner }
func (o *ownedStub) SetOwnerID(id uuid.UUID) { o.owner = id }

func TestAuthorize(t *testing.T) {
	x, y := uuid.New(), uuid.New()

	tests := []struct {
		name      string
		principal *Principal
		owner     uuid.UUID
		want      bool
	}{
		{"管理员可操作任意资源", &Principal{ID: y, Role: RoleModerator}, x, true},
		{"管理员操作自己的资源", &Principal{ID: x, Role: RoleModerator}, x, true},
		{"普通用户操作自己的资源", &Principal{ID: x, Role: RoleUser}, x, true},
		{"普通用户操作他人资源", &Principal{ID: y, Role: RoleUser}, x, false},
		{"未登录", nil, x, false},
		{"零值ID不匹配零值归属者", &Principal{Role: RoleUser}, uuid.Nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.principal, tt.owner))
		})
	}
}

func TestFillOwner(t *testing.T) {
	p := &Principal{ID: uuid.New(), Role: RoleUser}

	t.Run("为空时填充", func(t *testing.T) {
		o := &ownedStub{}
		require.NoError(t, FillOwner(o, p))
		assert.Equal(t, p.ID, o.owner)
	})

	t.Run("已有归属者时不覆盖", func(t *testing.T) {
		explicit := uuid.New()
		o := &ownedStub{owner: explicit}
		require.NoError(t, FillOwner(o, p))
		assert.Equal(t, explicit, o.owner)
	})

	t.Run("未登录且无归属者", func(t *testing.T) {
		err := FillOwner(&ownedStub{}, nil)
		assert.True(t, errors.Is(err, apperrors.ErrNotAuthenticated))
	})

	t.Run("未登录但已有归属者", func(t *testing.T) {
		assert.NoError(t, FillOwner(&ownedStub{owner: uuid.New()}, nil))
	})
}

func TestRole(t *testing.T) {
	assert.True(t, RoleModerator.Valid())
	assert.False(t, Role("ADMIN").Valid())
	assert.True(t, (&Principal{Role: RoleModerator}).IsModerator())
	assert.False(t, (*Principal)(nil).IsModerator())
}
