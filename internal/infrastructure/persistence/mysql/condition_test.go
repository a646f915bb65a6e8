package mysql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/vote"
)

func TestBuildCondition_Empty(t *testing.T) {
	sql, args, err := buildCondition(nil, bookColumns)
	require.NoError(t, err)
	assert.Empty(t, sql)
	assert.Empty(t, args)
}

func TestBuildCondition_Operators(t *testing.T) {
	id := uuid.New()
	cols := targetColumns("votes", "issuer", "book", "author", "comment")

	preds := query.New().
		EqID("accountId", &id).
		NotNull("bookId").
		Build()

	sql, args, err := buildCondition(preds, cols)
	require.NoError(t, err)
	assert.Equal(t, "votes.account_id = ? AND votes.book_id IS NOT NULL", sql)
	assert.Equal(t, []interface{}{id.String()}, args, "UUID按字符串传参")
}

func TestBuildCondition_VoteFilter(t *testing.T) {
	account, target := uuid.New(), uuid.New()
	f := vote.Filter{AccountID: &account, BookID: &target}

	sql, args, err := buildCondition(f.Predicates(), targetColumns("votes", "issuer", "book", "author", "comment"))
	require.NoError(t, err)
	assert.Contains(t, sql, "votes.account_id = ?")
	assert.Contains(t, sql, "votes.book_id = ?")
	assert.ElementsMatch(t, []interface{}{account.String(), target.String()}, args)
}

func TestBuildCondition_BookKeywords(t *testing.T) {
	sql, args, err := buildCondition(book.Filter{Keywords: "  Go_lang "}.Predicates(), bookColumns)
	require.NoError(t, err)

	assert.Contains(t, sql, "LOWER(books.name) LIKE ?")
	assert.Contains(t, sql, "books.issuer_id IN (SELECT i.id FROM issuers i WHERE LOWER(i.name) LIKE ?)")
	assert.Contains(t, sql, "JOIN authors a ON a.id = ba.author_id WHERE LOWER(a.first_name) LIKE ?")
	assert.Contains(t, sql, "JOIN tags t ON t.id = bt.tag_id WHERE LOWER(t.name) LIKE ?")
	assert.Contains(t, sql, " OR ")
	assert.Equal(t, byte('('), sql[0], "OR分组要加括号")

	require.Len(t, args, 5)
	for _, a := range args {
		assert.Equal(t, `%go\_lang%`, a)
	}
}

func TestBuildCondition_UnknownField(t *testing.T) {
	preds := query.New().Eq("password", "x").Build()
	_, _, err := buildCondition(preds, map[string]column{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"50%", `50\%`},
		{"a_b", `a\_b`},
		{`c:\dir`, `c:\\dir`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in))
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.False(t, isDuplicateError(nil))
	assert.True(t, isDuplicateError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateError(fmt.Errorf("Error 1062 (23000): Duplicate entry 'go' for key 'tags.name'")))
	assert.False(t, isDuplicateError(errors.New("connection refused")))
}

func TestIDHelpers(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, parseID(id.String()))
	assert.Equal(t, uuid.Nil, parseID("not-a-uuid"))

	assert.Nil(t, idPtr(nil))
	nilID := uuid.Nil
	assert.Nil(t, idPtr(&nilID))
	assert.Equal(t, id.String(), *idPtr(&id))

	assert.Nil(t, parseIDPtr(nil))
	s := id.String()
	assert.Equal(t, id, *parseIDPtr(&s))

	assert.Equal(t, []string{id.String()}, idStrings([]uuid.UUID{uuid.Nil, id}))
}
