package comment

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

// Family 错误业务域
const Family = "COMMENT"

// MaxContentLength 评论内容上限(按字符计)
const MaxContentLength = 2000

// Comment 评论实体
// 设计说明:
// 1. AccountID是归属者,创建时确定,之后不可修改
// 2. 至多挂在图书、作者、出版社中的一个上;回复另一条评论时ParentID可以与之同时存在
// 3. 没有业务主键,内容相同的两次保存会产生两条评论
type Comment struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Content   string
	ParentID  *uuid.UUID
	BookID    *uuid.UUID
	AuthorID  *uuid.UUID
	IssuerID  *uuid.UUID
	ImageIDs  []uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	ReplyCount int64
	VoteCount  int64
}

func (c *Comment) GetID() uuid.UUID        { return c.ID }
func (c *Comment) SetID(id uuid.UUID)      { c.ID = id }
func (c *Comment) OwnerID() uuid.UUID      { return c.AccountID }
func (c *Comment) SetOwnerID(id uuid.UUID) { c.AccountID = id }

// Validate 保存前校验
func (c *Comment) Validate() error {
	c.Content = strings.TrimSpace(c.Content)
	if c.Content == "" {
		return ErrContentRequired
	}
	if len([]rune(c.Content)) > MaxContentLength {
		return ErrContentTooLong
	}
	if c.ParentID != nil && c.ID != uuid.Nil && *c.ParentID == c.ID {
		return ErrSelfReply
	}
	n := 0
	for _, id := range []*uuid.UUID{c.BookID, c.AuthorID, c.IssuerID} {
		if id != nil {
			n++
		}
	}
	if n > 1 {
		return ErrMultipleTargets
	}
	return nil
}

// Filter 评论列表过滤条件,各字段精确匹配
type Filter struct {
	ParentID *uuid.UUID
	BookID   *uuid.UUID
	AuthorID *uuid.UUID
	IssuerID *uuid.UUID
}

func (f Filter) Predicates() []query.Predicate {
	return query.New().
		EqID("parentId", f.ParentID).
		EqID("bookId", f.BookID).
		EqID("authorId", f.AuthorID).
		EqID("issuerId", f.IssuerID).
		Build()
}

// 评论领域错误定义
var (
	ErrNotFound        = apperrors.ErrNotFound.In(Family).WithMessage("评论不存在")
	ErrContentRequired = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "评论内容不能为空")
	ErrContentTooLong  = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "评论内容过长")
	ErrSelfReply       = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "不能回复自己")
	ErrMultipleTargets = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "评论只能挂在图书、作者、出版社中的一个上")
)

// Repository 评论仓储接口
type Repository = resource.Repository[*Comment]

// Service 评论服务
type Service = resource.Service[*Comment, Filter]

// NewService 创建评论服务
// 没有ID的保存总是插入新评论;保存前在同一事务内确认回复的评论和评论对象存在
func NewService(repo Repository, tx resource.TxRunner, books *book.Service, authors *author.Service, issuers *issuer.Service) *Service {
	svc := resource.NewService[*Comment, Filter](resource.Config{
		Name:   "comment",
		Family: Family,
		Mode:   resource.ModeNonIdempotentUpsert,
	}, repo, tx)
	t := &targets{parents: svc, books: books, authors: authors, issuers: issuers}
	return svc.WithBeforeSave(t.require)
}

type targets struct {
	parents, books, authors, issuers resource.Checker
}

func (t *targets) require(ctx context.Context, _ *auth.Principal, c *Comment) error {
	for _, ref := range []struct {
		id  *uuid.UUID
		svc resource.Checker
	}{
		{c.ParentID, t.parents},
		{c.BookID, t.books},
		{c.AuthorID, t.authors},
		{c.IssuerID, t.issuers},
	} {
		if ref.id == nil {
			continue
		}
		if err := ref.svc.Require(ctx, *ref.id); err != nil {
			return err
		}
	}
	return nil
}
