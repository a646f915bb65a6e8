// Package resource 通用分页资源服务
//
// 作者、图书、出版社、标签、评论、投票、收藏都用同一套
// 列表/详情/保存/删除流程，按资源类型实例化一次
package resource

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/query"
)

// 仓储层返回的哨兵错误
// 服务层负责把它们翻译成带业务域的AppError
var (
	ErrRowNotFound  = errors.New("resource: row not found")
	ErrDuplicateKey = errors.New("resource: duplicate key")
)

// Entity 资源实体
// ID为uuid.Nil表示尚未持久化
type Entity interface {
	GetID() uuid.UUID
	SetID(id uuid.UUID)
}

// Validatable 保存前的字段校验，返回VALIDATION种类的错误
type Validatable interface {
	Validate() error
}

// Keyed 有业务主键的实体
// 返回nil表示当前输入不足以按业务主键匹配
type Keyed interface {
	NaturalKey() []query.Predicate
}

// Repository 资源仓储接口
// 设计说明：
// 1. 领域层只下发过滤条件和分页参数，不拼SQL
// 2. 查询默认按创建时间倒序
// 3. 计数字段（bookCount等）在FetchWindow/FetchByID时按需计算，不落库
type Repository[E Entity] interface {
	Count(ctx context.Context, preds []query.Predicate) (int64, error)
	FetchWindow(ctx context.Context, preds []query.Predicate, offset, limit int) ([]E, error)
	// FetchByID 不存在时返回ErrRowNotFound
	FetchByID(ctx context.Context, id uuid.UUID) (E, error)
	// FindOne 返回第一条匹配记录，不存在时返回ErrRowNotFound
	FindOne(ctx context.Context, preds []query.Predicate) (E, error)
	// Insert 唯一索引冲突时返回ErrDuplicateKey
	Insert(ctx context.Context, e E) error
	Update(ctx context.Context, e E) error
	// DeleteByID 记录不存在时不报错
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// TxRunner 事务管理
// fn内的所有仓储调用共享同一个事务，fn返回错误时回滚
type TxRunner interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
