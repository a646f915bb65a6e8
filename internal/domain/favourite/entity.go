package favourite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

const Family = "FAVOURITE"

// Type 收藏对象类型
type Type string

const (
	TypeIssuer Type = "ISSUER"
	TypeBook   Type = "BOOK"
	TypeAuthor Type = "AUTHOR"
)

var targetField = map[Type]string{
	TypeIssuer: "issuerId",
	TypeBook:   "bookId",
	TypeAuthor: "authorId",
}

// ParseType 忽略大小写解析收藏对象类型
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := targetField[t]; !ok {
		return "", ErrInvalidType
	}
	return t, nil
}

// Favourite 收藏
// 与投票相同,(AccountID, 对象)是业务主键
type Favourite struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	IssuerID  *uuid.UUID
	BookID    *uuid.UUID
	AuthorID  *uuid.UUID
	CreatedAt time.Time
}

func (f *Favourite) GetID() uuid.UUID        { return f.ID }
func (f *Favourite) SetID(id uuid.UUID)      { f.ID = id }
func (f *Favourite) OwnerID() uuid.UUID      { return f.AccountID }
func (f *Favourite) SetOwnerID(id uuid.UUID) { f.AccountID = id }

// Target 返回收藏对象,不是恰好一个对象时ok为false
func (f *Favourite) Target() (t Type, id uuid.UUID, ok bool) {
	n := 0
	if f.IssuerID != nil && *f.IssuerID != uuid.Nil {
		t, id = TypeIssuer, *f.IssuerID
		n++
	}
	if f.BookID != nil && *f.BookID != uuid.Nil {
		t, id = TypeBook, *f.BookID
		n++
	}
	if f.AuthorID != nil && *f.AuthorID != uuid.Nil {
		t, id = TypeAuthor, *f.AuthorID
		n++
	}
	return t, id, n == 1
}

func (f *Favourite) NaturalKey() []query.Predicate {
	t, id, ok := f.Target()
	if !ok || f.AccountID == uuid.Nil {
		return nil
	}
	return query.New().
		Eq("accountId", f.AccountID).
		Eq(targetField[t], id).
		Build()
}

func (f *Favourite) Validate() error {
	if _, _, ok := f.Target(); !ok {
		return ErrTargetRequired
	}
	return nil
}

// Filter 收藏查询条件
type Filter struct {
	AccountID *uuid.UUID
	Type      Type
	IssuerID  *uuid.UUID
	BookID    *uuid.UUID
	AuthorID  *uuid.UUID
}

func (f Filter) Predicates() []query.Predicate {
	b := query.New().
		EqID("accountId", f.AccountID).
		EqID("issuerId", f.IssuerID).
		EqID("bookId", f.BookID).
		EqID("authorId", f.AuthorID)
	if field, ok := targetField[f.Type]; ok {
		b.NotNull(field)
	}
	return b.Build()
}

// HasTarget 是否指定了查询对象
func (f Filter) HasTarget() bool {
	for _, id := range []*uuid.UUID{f.IssuerID, f.BookID, f.AuthorID} {
		if id != nil && *id != uuid.Nil {
			return true
		}
	}
	return false
}

var (
	ErrNotFound       = apperrors.ErrNotFound.In(Family).WithMessage("收藏不存在")
	ErrTargetRequired = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "收藏必须且只能指向一个对象")
	ErrInvalidType    = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "收藏类型只能是ISSUER、BOOK或AUTHOR")
)

type Repository = resource.Repository[*Favourite]

type Service = resource.Service[*Favourite, Filter]

func NewService(repo Repository, tx resource.TxRunner, issuers *issuer.Service, books *book.Service, authors *author.Service) *Service {
	targets := map[Type]resource.Checker{
		TypeIssuer: issuers,
		TypeBook:   books,
		TypeAuthor: authors,
	}
	return resource.NewService[*Favourite, Filter](resource.Config{
		Name:   "favourite",
		Family: Family,
		Mode:   resource.ModeUpsert,
	}, repo, tx).WithBeforeSave(func(ctx context.Context, _ *auth.Principal, f *Favourite) error {
		// 对象不合法时交给Validate报错
		t, id, ok := f.Target()
		if !ok {
			return nil
		}
		return targets[t].Require(ctx, id)
	})
}
