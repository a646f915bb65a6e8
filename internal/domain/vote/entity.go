package vote

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// Family 错误业务域
const Family = "VOTE"

// Type 投票对象类型
type Type string

const (
	TypeIssuer  Type = "ISSUER"
	TypeBook    Type = "BOOK"
	TypeAuthor  Type = "AUTHOR"
	TypeComment Type = "COMMENT"
)

// ParseType 忽略大小写解析投票对象类型
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := targetField[t]; !ok {
		return "", ErrInvalidType
	}
	return t, nil
}

// targetField 类型对应的逻辑字段
var targetField = map[Type]string{
	TypeIssuer:  "issuerId",
	TypeBook:    "bookId",
	TypeAuthor:  "authorId",
	TypeComment: "commentId",
}

// Vote 投票(点赞)
// 设计说明:
// 1. 每条投票只指向一个对象
// 2. (AccountID, 对象)是业务主键,重复投票会更新已有记录而不是新增
type Vote struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	IssuerID  *uuid.UUID
	BookID    *uuid.UUID
	AuthorID  *uuid.UUID
	CommentID *uuid.UUID
	CreatedAt time.Time
}

func (v *Vote) GetID() uuid.UUID        { return v.ID }
func (v *Vote) SetID(id uuid.UUID)      { v.ID = id }
func (v *Vote) OwnerID() uuid.UUID      { return v.AccountID }
func (v *Vote) SetOwnerID(id uuid.UUID) { v.AccountID = id }

// Target 返回投票对象的类型和ID,不是恰好一个对象时ok为false
func (v *Vote) Target() (t Type, id uuid.UUID, ok bool) {
	n := 0
	for _, c := range []struct {
		t  Type
		id *uuid.UUID
	}{
		{TypeIssuer, v.IssuerID},
		{TypeBook, v.BookID},
		{TypeAuthor, v.AuthorID},
		{TypeComment, v.CommentID},
	} {
		if c.id != nil && *c.id != uuid.Nil {
			t, id = c.t, *c.id
			n++
		}
	}
	return t, id, n == 1
}

// NaturalKey 按(账号, 对象)匹配
func (v *Vote) NaturalKey() []query.Predicate {
	t, id, ok := v.Target()
	if !ok || v.AccountID == uuid.Nil {
		return nil
	}
	return query.New().
		Eq("accountId", v.AccountID).
		Eq(targetField[t], id).
		Build()
}

// Validate 必须恰好指向一个对象
func (v *Vote) Validate() error {
	if _, _, ok := v.Target(); !ok {
		return ErrTargetRequired
	}
	return nil
}

// Filter 投票查询条件
// Type用于"我的投票"列表,其余字段用于查询某个对象的投票状态
type Filter struct {
	AccountID *uuid.UUID
	Type      Type
	IssuerID  *uuid.UUID
	BookID    *uuid.UUID
	AuthorID  *uuid.UUID
	CommentID *uuid.UUID
}

func (f Filter) Predicates() []query.Predicate {
	b := query.New().
		EqID("accountId", f.AccountID).
		EqID("issuerId", f.IssuerID).
		EqID("bookId", f.BookID).
		EqID("authorId", f.AuthorID).
		EqID("commentId", f.CommentID)
	if field, ok := targetField[f.Type]; ok {
		b.NotNull(field)
	}
	return b.Build()
}

// HasTarget 是否指定了查询对象
func (f Filter) HasTarget() bool {
	for _, id := range []*uuid.UUID{f.IssuerID, f.BookID, f.AuthorID, f.CommentID} {
		if id != nil && *id != uuid.Nil {
			return true
		}
	}
	return false
}

var (
	ErrNotFound       = apperrors.ErrNotFound.In(Family).WithMessage("投票不存在")
	ErrTargetRequired = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "投票必须且只能指向一个对象")
	ErrInvalidType    = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "投票类型只能是ISSUER、BOOK、AUTHOR或COMMENT")
)

// Repository 投票仓储接口
type Repository = resource.Repository[*Vote]

// Service 投票服务
type Service = resource.Service[*Vote, Filter]

// NewService 创建投票服务
// 保存前确认投票对象存在
func NewService(repo Repository, tx resource.TxRunner, issuers *issuer.Service, books *book.Service, authors *author.Service, comments *comment.Service) *Service {
	targets := map[Type]resource.Checker{
		TypeIssuer:  issuers,
		TypeBook:    books,
		TypeAuthor:  authors,
		TypeComment: comments,
	}
	return resource.NewService[*Vote, Filter](resource.Config{
		Name:   "vote",
		Family: Family,
		Mode:   resource.ModeUpsert,
	}, repo, tx).WithBeforeSave(func(ctx context.Context, _ *auth.Principal, v *Vote) error {
		t, id, ok := v.Target()
		if !ok {
			return nil
		}
		return targets[t].Require(ctx, id)
	})
}
