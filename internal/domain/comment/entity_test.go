package comment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/domain/resource/resourcetest"
	"github.com/xiebiao/bookhub/internal/domain/tag"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/paging"
)

func lookup(c *Comment, field string) []string {
	var id *uuid.UUID
	switch field {
	case "accountId":
		return []string{c.AccountID.String()}
	case "parentId":
		id = c.ParentID
	case "bookId":
		id = c.BookID
	case "authorId":
		id = c.AuthorID
	case "issuerId":
		id = c.IssuerID
	}
	if id == nil {
		return nil
	}
	return []string{id.String()}
}

// targetRepos 评论对象所在的仓储，只按ID读取
type targetRepos struct {
	books   *resourcetest.Repo[*book.Book]
	authors *resourcetest.Repo[*author.Author]
	issuers *resourcetest.Repo[*issuer.Issuer]
}

func byID[E any](E, string) []string { return nil }

func newTestService() (*Service, *resourcetest.Repo[*Comment]) {
	svc, repo, _ := newTestServiceWithTargets()
	return svc, repo
}

func newTestServiceWithTargets() (*Service, *resourcetest.Repo[*Comment], *targetRepos) {
	tx := &resourcetest.Tx{}
	repo := resourcetest.New(lookup, func(c *Comment) *Comment { cp := *c; return &cp })
	tr := &targetRepos{
		books:   resourcetest.New(byID[*book.Book], func(b *book.Book) *book.Book { c := *b; return &c }),
		authors: resourcetest.New(byID[*author.Author], func(a *author.Author) *author.Author { c := *a; return &c }),
		issuers: resourcetest.New(byID[*issuer.Issuer], func(i *issuer.Issuer) *issuer.Issuer { c := *i; return &c }),
	}
	issuers := issuer.NewService(tr.issuers, tx)
	authors := author.NewService(tr.authors, tx)
	tags := tag.NewService(resourcetest.New(byID[*tag.Tag], func(t *tag.Tag) *tag.Tag { c := *t; return &c }), tx)
	books := book.NewService(tr.books, tx, issuers, authors, tags)
	return NewService(repo, tx, books, authors, issuers), repo, tr
}

func TestComment_Validate(t *testing.T) {
	assert.True(t, errors.Is((&Comment{Content: "  "}).Validate(), ErrContentRequired))
	assert.True(t, errors.Is((&Comment{Content: strings.Repeat("书", MaxContentLength+1)}).Validate(), ErrContentTooLong))

	id := uuid.New()
	err := (&Comment{ID: id, ParentID: &id, Content: "x"}).Validate()
	assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err))

	c := &Comment{Content: "  good  "}
	require.NoError(t, c.Validate())
	assert.Equal(t, "good", c.Content)

	bookID, authorID, parentID := uuid.New(), uuid.New(), uuid.New()
	err = (&Comment{BookID: &bookID, AuthorID: &authorID, Content: "x"}).Validate()
	assert.True(t, errors.Is(err, ErrMultipleTargets))

	// 回复可以同时带上所属对象
	require.NoError(t, (&Comment{BookID: &bookID, ParentID: &parentID, Content: "x"}).Validate())
}

func TestService_Save_TargetMustExist(t *testing.T) {
	ctx := context.Background()
	svc, repo, tr := newTestServiceWithTargets()
	p := &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}
	b := &book.Book{Name: "Go in Action", Edition: 1}
	tr.books.Seed(b)
	parent := &Comment{AccountID: p.ID, BookID: &b.ID, Content: "a"}
	repo.Seed(parent)

	missing := uuid.New()
	tests := []struct {
		name string
		in   *Comment
		want *apperrors.AppError
	}{
		{"图书不存在", &Comment{BookID: &missing, Content: "x"}, apperrors.ErrNotFound.In(book.Family)},
		{"作者不存在", &Comment{AuthorID: &missing, Content: "x"}, apperrors.ErrNotFound.In(author.Family)},
		{"出版社不存在", &Comment{IssuerID: &missing, Content: "x"}, apperrors.ErrNotFound.In(issuer.Family)},
		{"回复的评论不存在", &Comment{BookID: &b.ID, ParentID: &missing, Content: "x"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, p, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Equal(t, 1, repo.Len(), "对象不存在时不写入评论")

	reply, err := svc.Save(ctx, p, &Comment{BookID: &b.ID, ParentID: &parent.ID, Content: "b"})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *reply.ParentID)
	assert.Equal(t, 2, repo.Len())
}

func TestService_SameContentTwiceCreatesTwoRows(t *testing.T) {
	ctx := context.Background()
	svc, repo, tr := newTestServiceWithTargets()
	p := &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}
	target := &book.Book{Name: "Go in Action", Edition: 1}
	tr.books.Seed(target)

	a, err := svc.Save(ctx, p, &Comment{BookID: &target.ID, Content: "好书"})
	require.NoError(t, err)
	b, err := svc.Save(ctx, p, &Comment{BookID: &target.ID, Content: "好书"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, repo.Len())
	assert.Equal(t, p.ID, a.AccountID)
}

func TestService_ListByTarget(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	bookID, authorID := uuid.New(), uuid.New()
	parent := &Comment{AccountID: uuid.New(), BookID: &bookID, Content: "a"}
	repo.Seed(parent)
	repo.Seed(
		&Comment{AccountID: uuid.New(), BookID: &bookID, ParentID: &parent.ID, Content: "b"},
		&Comment{AccountID: uuid.New(), AuthorID: &authorID, Content: "c"},
	)

	page, err := svc.List(ctx, Filter{BookID: &bookID}, paging.Request{Index: 0, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalRowCount)

	page, err = svc.List(ctx, Filter{ParentID: &parent.ID}, paging.Request{Index: 0, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalRowCount)

	page, err = svc.List(ctx, Filter{}, paging.Request{Index: 0, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalRowCount)
	assert.EqualValues(t, 2, page.TotalPageCount)
	assert.Len(t, page.Rows, 2)
}

func TestService_DeleteOrder(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	owner := &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}
	c := &Comment{AccountID: owner.ID, Content: "x"}
	repo.Seed(c)

	err := svc.Delete(ctx, nil, uuid.New())
	assert.Equal(t, apperrors.KindNotAuthenticated, apperrors.Kind(err), "未登录时先报NOT_AUTHENTICATED")

	err = svc.Delete(ctx, owner, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))

	err = svc.Delete(ctx, &auth.Principal{ID: uuid.New(), Role: auth.RoleUser}, c.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotAuthorized.In(Family)))

	require.NoError(t, svc.Delete(ctx, owner, c.ID))
	assert.Equal(t, 0, repo.Len())
}
