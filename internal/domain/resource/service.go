package resource

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/query"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/metrics"
	"github.com/xiebiao/bookhub/pkg/paging"
	"github.com/xiebiao/bookhub/pkg/tracing"
)

const tracerName = "bookhub/resource"

// Config 资源服务配置
type Config struct {
	Name   string   // 资源名，用于指标与Span（author、comment...）
	Family string   // 错误业务域（AUTHOR、COMMENT...）
	Mode   SaveMode // 保存模式
}

// BeforeSave 在事务内、校验之前调用，用于解析嵌套引用（如图书的出版社、作者、标签）
type BeforeSave[E Entity] func(ctx context.Context, p *auth.Principal, e E) error

// Service 通用分页资源服务
// 设计说明：
// 1. 一个实现，按资源类型实例化
// 2. 调用者（Principal）显式传入，nil表示未登录
// 3. 实现了auth.Owned的实体自动走归属者校验（评论、投票、收藏）
type Service[E Entity, F query.Filter] struct {
	cfg        Config
	repo       Repository[E]
	tx         TxRunner
	coord      *Coordinator[E]
	owned      bool
	beforeSave BeforeSave[E]
}

// NewService 创建资源服务
func NewService[E Entity, F query.Filter](cfg Config, repo Repository[E], tx TxRunner) *Service[E, F] {
	var zero E
	_, owned := any(zero).(auth.Owned)
	return &Service[E, F]{
		cfg:   cfg,
		repo:  repo,
		tx:    tx,
		coord: NewCoordinator(repo, cfg.Mode),
		owned: owned,
	}
}

// WithBeforeSave 设置保存前钩子
func (s *Service[E, F]) WithBeforeSave(fn BeforeSave[E]) *Service[E, F] {
	s.beforeSave = fn
	return s
}

// Name 资源名
func (s *Service[E, F]) Name() string {
	return s.cfg.Name
}

// Family 错误业务域
func (s *Service[E, F]) Family() string {
	return s.cfg.Family
}

// Owned 是否为有归属者的资源
func (s *Service[E, F]) Owned() bool {
	return s.owned
}

// Coordinator 保存协调器，供其他资源在同一事务内解析嵌套引用
func (s *Service[E, F]) Coordinator() *Coordinator[E] {
	return s.coord
}

// List 分页查询
// 计数与窗口查询在同一事务内执行，保证TotalRowCount与Rows来自同一快照
func (s *Service[E, F]) List(ctx context.Context, filter F, req paging.Request) (page *paging.Page[E], err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, s.cfg.Name+".List",
		attribute.Int("page.index", req.Index), attribute.Int("page.size", req.Size))
	defer func() { s.finish(span, "list", err) }()

	if err := req.Validate(); err != nil {
		return nil, s.fail(err)
	}
	preds := filter.Predicates()

	var (
		total int64
		rows  []E
	)
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if total, err = s.repo.Count(ctx, preds); err != nil {
			return err
		}
		if int64(req.Offset()) >= total {
			return nil
		}
		rows, err = s.repo.FetchWindow(ctx, preds, req.Offset(), req.Limit())
		return err
	})
	if err != nil {
		return nil, s.fail(err)
	}
	return paging.New(rows, total, req), nil
}

// Get 按ID查询，不存在时返回NOT_FOUND
func (s *Service[E, F]) Get(ctx context.Context, id uuid.UUID) (e E, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, s.cfg.Name+".Get", attribute.String("id", id.String()))
	defer func() { s.finish(span, "get", err) }()

	e, err = s.repo.FetchByID(ctx, id)
	if err != nil {
		var zero E
		return zero, s.fail(err)
	}
	return e, nil
}

// FindOne 返回第一条匹配记录，不存在时返回NOT_FOUND
func (s *Service[E, F]) FindOne(ctx context.Context, filter F) (e E, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, s.cfg.Name+".FindOne")
	defer func() { s.finish(span, "find", err) }()

	preds := filter.Predicates()
	if len(preds) == 0 {
		var zero E
		return zero, s.fail(apperrors.ErrValidation.WithMessage("查询条件不能为空"))
	}
	e, err = s.repo.FindOne(ctx, preds)
	if err != nil {
		var zero E
		return zero, s.fail(err)
	}
	return e, nil
}

// Save 保存资源
// 流程（同一事务）：
// 1. 有归属者的资源：归属者为空时用调用者填充
// 2. 解析嵌套引用（BeforeSave）
// 3. 字段校验
// 4. 按保存模式插入或更新；覆盖已有记录前校验权限并沿用原归属者
func (s *Service[E, F]) Save(ctx context.Context, p *auth.Principal, e E) (saved E, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, s.cfg.Name+".Save",
		attribute.String("mode", s.cfg.Mode.String()))
	defer func() { s.finish(span, "save", err) }()

	var created bool
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if s.owned {
			if err := auth.FillOwner(any(e).(auth.Owned), p); err != nil {
				return err
			}
		}
		if s.beforeSave != nil {
			if err := s.beforeSave(ctx, p, e); err != nil {
				return err
			}
		}
		if v, ok := any(e).(Validatable); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
		var err error
		created, err = s.coord.Save(ctx, e, s.guard(p))
		return err
	})
	if err != nil {
		var zero E
		return zero, s.fail(err)
	}
	span.SetAttributes(attribute.Bool("created", created), attribute.String("id", e.GetID().String()))
	return e, nil
}

// Checker 校验被引用的记录存在
type Checker interface {
	Require(ctx context.Context, id uuid.UUID) error
}

// Require 校验记录存在，不存在时返回本业务域的NOT_FOUND
// 其他资源保存前用它检查引用，在调用方的事务内执行
func (s *Service[E, F]) Require(ctx context.Context, id uuid.UUID) error {
	_, err := s.coord.FetchByID(ctx, id)
	if err == nil {
		return nil
	}
	return s.fail(err)
}

// Delete 按ID删除
// 无归属者的资源直接删除，记录不存在视为成功
// 有归属者的资源按固定顺序检查：登录 → 存在 → 权限
func (s *Service[E, F]) Delete(ctx context.Context, p *auth.Principal, id uuid.UUID) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, s.cfg.Name+".Delete", attribute.String("id", id.String()))
	defer func() { s.finish(span, "delete", err) }()

	if !s.owned {
		return s.fail(s.tx.Transaction(ctx, func(ctx context.Context) error {
			return s.repo.DeleteByID(ctx, id)
		}))
	}

	if p == nil {
		return s.fail(apperrors.ErrNotAuthenticated)
	}
	return s.fail(s.tx.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FetchByID(ctx, id)
		if err != nil {
			return err
		}
		if !auth.Authorize(p, any(existing).(auth.Owned).OwnerID()) {
			return apperrors.ErrNotAuthorized
		}
		return s.repo.DeleteByID(ctx, id)
	}))
}

// guard 覆盖已有记录前的权限检查
func (s *Service[E, F]) guard(p *auth.Principal) UpdateGuard[E] {
	if !s.owned {
		return nil
	}
	return func(existing, next E) error {
		owner := any(existing).(auth.Owned).OwnerID()
		if !auth.Authorize(p, owner) {
			if p == nil {
				return apperrors.ErrNotAuthenticated
			}
			return apperrors.ErrNotAuthorized
		}
		// 归属者创建后不可修改
		any(next).(auth.Owned).SetOwnerID(owner)
		return nil
	}
}

// fail 统一错误翻译
// 仓储哨兵错误 → 对应种类；AppError补上业务域；其他错误包装为内部错误
func (s *Service[E, F]) fail(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrRowNotFound):
		return apperrors.ErrNotFound.In(s.cfg.Family)
	case errors.Is(err, ErrDuplicateKey):
		return apperrors.ErrAlreadyExists.In(s.cfg.Family)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Family == "" {
			return appErr.In(s.cfg.Family)
		}
		return appErr
	}
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeDatabaseError,
		Family:  s.cfg.Family,
		Message: "数据库操作失败",
		Err:     err,
	}
}

// finish 结束Span并记录操作指标
func (s *Service[E, F]) finish(span trace.Span, op string, err error) {
	result := "ok"
	if err != nil {
		result = apperrors.Kind(err)
	}
	metrics.ObserveResource(s.cfg.Name, op, result)
	tracing.End(span, err)
}
