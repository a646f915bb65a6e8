package resource

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// SaveMode 保存模式
type SaveMode int

const (
	// ModeUpsert 有ID按ID更新，没有ID按业务主键匹配，都不存在则插入
	ModeUpsert SaveMode = iota
	// ModeInsertOnly 只插入，ID或业务主键已存在时返回ALREADY_EXISTS（账号注册）
	ModeInsertOnly
	// ModeNonIdempotentUpsert 没有ID总是插入新行，有ID原地更新（评论）
	ModeNonIdempotentUpsert
)

func (m SaveMode) String() string {
	switch m {
	case ModeUpsert:
		return "upsert"
	case ModeInsertOnly:
		return "insert-only"
	case ModeNonIdempotentUpsert:
		return "non-idempotent-upsert"
	default:
		return "unknown"
	}
}

// UpdateGuard 覆盖已有记录之前调用
// existing是库中的当前记录，next是即将写入的记录；返回错误则放弃保存
type UpdateGuard[E Entity] func(existing, next E) error

// Coordinator 按保存模式决定插入还是更新
// 不做密码哈希，调用方负责预处理敏感字段
type Coordinator[E Entity] struct {
	repo  Repository[E]
	mode  SaveMode
	newID func() uuid.UUID
}

// NewCoordinator 创建保存协调器
func NewCoordinator[E Entity](repo Repository[E], mode SaveMode) *Coordinator[E] {
	return &Coordinator[E]{
		repo:  repo,
		mode:  mode,
		newID: uuid.New,
	}
}

// Mode 当前保存模式
func (c *Coordinator[E]) Mode() SaveMode {
	return c.mode
}

// FetchByID 按ID读取，不存在时返回ErrRowNotFound
// 供嵌套引用在保存前确认被引用的记录存在
func (c *Coordinator[E]) FetchByID(ctx context.Context, id uuid.UUID) (E, error) {
	return c.repo.FetchByID(ctx, id)
}

// Save 保存实体，created表示是否插入了新行
// 调用方应在事务内调用
func (c *Coordinator[E]) Save(ctx context.Context, e E, guard UpdateGuard[E]) (created bool, err error) {
	switch c.mode {
	case ModeInsertOnly:
		return c.insertOnly(ctx, e)
	case ModeNonIdempotentUpsert:
		if e.GetID() == uuid.Nil {
			return c.insert(ctx, e)
		}
		return c.saveByID(ctx, e, guard)
	default:
		if e.GetID() != uuid.Nil {
			return c.saveByID(ctx, e, guard)
		}
		return c.saveByKey(ctx, e, guard)
	}
}

// saveByID 按ID存在则更新，否则以该ID插入
func (c *Coordinator[E]) saveByID(ctx context.Context, e E, guard UpdateGuard[E]) (bool, error) {
	existing, err := c.repo.FetchByID(ctx, e.GetID())
	if errors.Is(err, ErrRowNotFound) {
		return true, c.repo.Insert(ctx, e)
	}
	if err != nil {
		return false, err
	}
	return false, c.update(ctx, existing, e, guard)
}

// saveByKey 按业务主键匹配已有记录，匹配上则沿用其ID
func (c *Coordinator[E]) saveByKey(ctx context.Context, e E, guard UpdateGuard[E]) (bool, error) {
	existing, found, err := c.findByKey(ctx, e)
	if err != nil {
		return false, err
	}
	if !found {
		return c.insert(ctx, e)
	}
	e.SetID(existing.GetID())
	return false, c.update(ctx, existing, e, guard)
}

func (c *Coordinator[E]) insertOnly(ctx context.Context, e E) (bool, error) {
	if e.GetID() != uuid.Nil {
		_, err := c.repo.FetchByID(ctx, e.GetID())
		if err == nil {
			return false, apperrors.ErrAlreadyExists
		}
		if !errors.Is(err, ErrRowNotFound) {
			return false, err
		}
	}
	if _, found, err := c.findByKey(ctx, e); err != nil {
		return false, err
	} else if found {
		return false, apperrors.ErrAlreadyExists
	}

	if e.GetID() == uuid.Nil {
		e.SetID(c.newID())
	}
	// 并发注册同名账号时由唯一索引兜底
	if err := c.repo.Insert(ctx, e); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return false, apperrors.ErrAlreadyExists
		}
		return false, err
	}
	return true, nil
}

func (c *Coordinator[E]) insert(ctx context.Context, e E) (bool, error) {
	e.SetID(c.newID())
	if err := c.repo.Insert(ctx, e); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Coordinator[E]) update(ctx context.Context, existing, next E, guard UpdateGuard[E]) error {
	if guard != nil {
		if err := guard(existing, next); err != nil {
			return err
		}
	}
	return c.repo.Update(ctx, next)
}

func (c *Coordinator[E]) findByKey(ctx context.Context, e E) (E, bool, error) {
	var zero E
	keyed, ok := any(e).(Keyed)
	if !ok {
		return zero, false, nil
	}
	preds := keyed.NaturalKey()
	if len(preds) == 0 {
		return zero, false, nil
	}
	existing, err := c.repo.FindOne(ctx, preds)
	if errors.Is(err, ErrRowNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	return existing, true, nil
}
