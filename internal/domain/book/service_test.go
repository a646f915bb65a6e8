package book

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/domain/resource/resourcetest"
	"github.com/xiebiao/bookhub/internal/domain/tag"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/paging"
)

type fixture struct {
	books   *resourcetest.Repo[*Book]
	issuers *resourcetest.Repo[*issuer.Issuer]
	authors *resourcetest.Repo[*author.Author]
	tags    *resourcetest.Repo[*tag.Tag]
	svc     *Service
}

func newFixture() *fixture {
	tx := &resourcetest.Tx{}
	f := &fixture{
		issuers: resourcetest.New(
			func(i *issuer.Issuer, field string) []string { return []string{i.Name} },
			func(i *issuer.Issuer) *issuer.Issuer { c := *i; return &c },
		),
		authors: resourcetest.New(
			func(a *author.Author, field string) []string {
				if field == "firstName" {
					return []string{a.FirstName}
				}
				return []string{a.LastName}
			},
			func(a *author.Author) *author.Author { c := *a; return &c },
		),
		tags: resourcetest.New(
			func(t *tag.Tag, field string) []string { return []string{t.Name} },
			func(t *tag.Tag) *tag.Tag { c := *t; return &c },
		),
	}
	f.books = resourcetest.New(bookLookup, func(b *Book) *Book { c := *b; return &c })
	f.svc = NewService(f.books, tx,
		issuer.NewService(f.issuers, tx),
		author.NewService(f.authors, tx),
		tag.NewService(f.tags, tx),
	)
	return f
}

func bookLookup(b *Book, field string) []string {
	switch field {
	case "name":
		return []string{b.Name}
	case "edition":
		return []string{strconv.Itoa(b.Edition)}
	case "issuer.name":
		if b.Issuer == nil {
			return nil
		}
		return []string{b.Issuer.Name}
	case "authors.firstName", "authors.lastName":
		var out []string
		for _, a := range b.Authors {
			if field == "authors.firstName" {
				out = append(out, a.FirstName)
			} else {
				out = append(out, a.LastName)
			}
		}
		return out
	case "tags.name":
		var out []string
		for _, t := range b.Tags {
			out = append(out, t.Name)
		}
		return out
	}
	return nil
}

func TestService_Save_ResolvesNestedReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	existing := &author.Author{FirstName: "Rob", LastName: "Pike", Gender: author.GenderMale}
	f.authors.Seed(existing)

	saved, err := f.svc.Save(ctx, nil, &Book{
		Name:    "The Go Programming Language",
		Edition: 1,
		Price:   8900,
		Issuer:  &issuer.Issuer{Name: "Addison-Wesley"},
		Authors: []*author.Author{
			{ID: existing.ID},
			{FirstName: "Alan", LastName: "Donovan"},
			{FirstName: "Rob", LastName: "Pike"},
		},
		Tags: []*tag.Tag{{Name: "golang"}},
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, saved.IssuerID(), "出版社按名称创建")
	assert.Equal(t, 1, f.issuers.Len())
	assert.Equal(t, 2, f.authors.Len(), "同名作者按业务主键复用")
	assert.Len(t, saved.Authors, 2, "重复引用去重")
	assert.Equal(t, existing.ID, saved.Authors[0].ID)
	assert.Equal(t, 1, f.tags.Len())

	again, err := f.svc.Save(ctx, nil, &Book{
		Name:    "The Go Programming Language",
		Edition: 1,
		Price:   7900,
		Issuer:  &issuer.Issuer{Name: "Addison-Wesley"},
	})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID, "按(书名,版次)匹配已有图书")
	assert.Equal(t, 1, f.books.Len())
	assert.Equal(t, 1, f.issuers.Len())
}

func TestService_Save_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	tests := []struct {
		name string
		in   *Book
		want *apperrors.AppError
	}{
		{"书名为空", &Book{Name: " ", Edition: 1, Issuer: &issuer.Issuer{Name: "x"}}, ErrNameRequired},
		{"版次为0", &Book{Name: "a", Edition: 0, Issuer: &issuer.Issuer{Name: "x"}}, ErrInvalidEdition},
		{"价格为负", &Book{Name: "a", Edition: 1, Price: -1, Issuer: &issuer.Issuer{Name: "x"}}, ErrInvalidPrice},
		{"缺少出版社", &Book{Name: "a", Edition: 1}, ErrIssuerRequired},
		{"嵌套作者姓名为空", &Book{Name: "a", Edition: 1, Issuer: &issuer.Issuer{Name: "x"}, Authors: []*author.Author{{FirstName: "Rob"}}}, author.ErrNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Save(ctx, nil, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, apperrors.KindValidation, apperrors.Kind(err))
		})
	}
	assert.Equal(t, 0, f.books.Len())
}

func TestService_List_Keywords(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.books.Seed(
		&Book{Name: "Clean Code", Edition: 1, Issuer: &issuer.Issuer{Name: "Prentice Hall"},
			Authors: []*author.Author{{FirstName: "Robert", LastName: "Martin"}}},
		&Book{Name: "Go in Action", Edition: 1, Issuer: &issuer.Issuer{Name: "Manning"},
			Tags: []*tag.Tag{{Name: "golang"}}},
		&Book{Name: "Designing Data-Intensive Applications", Edition: 1, Issuer: &issuer.Issuer{Name: "O'Reilly"}},
	)

	tests := []struct {
		keywords string
		want     int64
	}{
		{"", 3},
		{"clean", 1},
		{"manning", 1},
		{"MARTIN", 1},
		{"golang", 1},
		{"in", 3},
		{"rust", 0},
	}
	for _, tt := range tests {
		t.Run(tt.keywords, func(t *testing.T) {
			page, err := f.svc.List(ctx, Filter{Keywords: tt.keywords}, paging.Request{Index: 0, Size: 10})
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.TotalRowCount)
			assert.LessOrEqual(t, len(page.Rows), 10)
		})
	}
}

func TestFilter_EmptyKeywords(t *testing.T) {
	assert.Nil(t, Filter{Keywords: "  "}.Predicates())
}

func TestService_Save_UnknownReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	known := &issuer.Issuer{Name: "Manning"}
	f.issuers.Seed(known)

	tests := []struct {
		name string
		in   *Book
		want *apperrors.AppError
	}{
		{"出版社不存在", &Book{Name: "a", Edition: 1, Issuer: &issuer.Issuer{ID: uuid.New()}},
			apperrors.ErrNotFound.In(issuer.Family)},
		{"作者不存在", &Book{Name: "a", Edition: 1, Issuer: &issuer.Issuer{ID: known.ID},
			Authors: []*author.Author{{ID: uuid.New()}}}, apperrors.ErrNotFound.In(author.Family)},
		{"标签不存在", &Book{Name: "a", Edition: 1, Issuer: &issuer.Issuer{ID: known.ID},
			Tags: []*tag.Tag{{ID: uuid.New()}}}, apperrors.ErrNotFound.In(tag.Family)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Save(ctx, nil, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Equal(t, 0, f.books.Len(), "引用不存在时不写入图书")

	saved, err := f.svc.Save(ctx, nil, &Book{Name: "Go in Action", Edition: 1, Issuer: &issuer.Issuer{ID: known.ID}})
	require.NoError(t, err)
	assert.Equal(t, known.ID, saved.IssuerID())
}
