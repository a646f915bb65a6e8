package book

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	"github.com/xiebiao/bookhub/internal/domain/tag"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// Repository 图书仓储接口(依赖倒置原则)
// 实现方负责维护作者、标签、图片的关联表
type Repository = resource.Repository[*Book]

// Service 图书服务
type Service = resource.Service[*Book, Filter]

// NewService 创建图书服务
// 保存图书时在同一事务内先解析出版社、作者、标签:
// 只带ID的引用必须已存在,带字段的按业务主键upsert
func NewService(repo Repository, tx resource.TxRunner, issuers *issuer.Service, authors *author.Service, tags *tag.Service) *Service {
	r := &refResolver{
		issuers: issuers.Coordinator(),
		authors: authors.Coordinator(),
		tags:    tags.Coordinator(),
	}
	return resource.NewService[*Book, Filter](resource.Config{
		Name:   "book",
		Family: Family,
		Mode:   resource.ModeUpsert,
	}, repo, tx).WithBeforeSave(r.resolve)
}

type refResolver struct {
	issuers *resource.Coordinator[*issuer.Issuer]
	authors *resource.Coordinator[*author.Author]
	tags    *resource.Coordinator[*tag.Tag]
}

func (r *refResolver) resolve(ctx context.Context, _ *auth.Principal, b *Book) error {
	if b.Issuer != nil {
		if err := resolveRef(ctx, r.issuers, issuer.Family, b.Issuer); err != nil {
			return err
		}
	}
	for _, a := range b.Authors {
		if err := resolveRef(ctx, r.authors, author.Family, a); err != nil {
			return err
		}
	}
	for _, t := range b.Tags {
		if err := resolveRef(ctx, r.tags, tag.Family, t); err != nil {
			return err
		}
	}
	b.Authors = dedupe(b.Authors)
	b.Tags = dedupe(b.Tags)
	return nil
}

type reference interface {
	IsReference() bool
}

// resolveRef 引用不存在时返回被引用方业务域的NOT_FOUND
func resolveRef[E resource.Entity](ctx context.Context, c *resource.Coordinator[E], family string, e E) error {
	if ref, ok := any(e).(reference); ok && ref.IsReference() {
		_, err := c.FetchByID(ctx, e.GetID())
		if errors.Is(err, resource.ErrRowNotFound) {
			return apperrors.ErrNotFound.In(family)
		}
		return err
	}
	if v, ok := any(e).(resource.Validatable); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	_, err := c.Save(ctx, e, nil)
	return err
}

// dedupe 同一个作者/标签被引用多次时只保留一条关联
func dedupe[E resource.Entity](items []E) []E {
	seen := make(map[uuid.UUID]struct{}, len(items))
	out := items[:0]
	for _, e := range items {
		if _, ok := seen[e.GetID()]; ok {
			continue
		}
		seen[e.GetID()] = struct{}{}
		out = append(out, e)
	}
	return out
}
