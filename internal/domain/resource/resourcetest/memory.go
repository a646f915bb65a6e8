// Package resourcetest 内存版仓储，用于服务层和HTTP层测试
package resourcetest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
)

type txKey struct{}

// Tx 内存事务：直接执行fn，只记录调用次数
type Tx struct {
	mu    sync.Mutex
	Calls int
}

// Transaction 实现resource.TxRunner
func (t *Tx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.Calls++
	t.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

// InTx ctx是否处于Tx.Transaction内
func InTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// Repo 内存仓储
// Lookup返回实体在逻辑字段上的取值，用于求值过滤条件
// Clone用于隔离存储副本与调用方持有的对象
// Unique返回唯一键，非空且冲突时Insert返回ErrDuplicateKey
type Repo[E resource.Entity] struct {
	Lookup func(e E, field string) []string
	Clone  func(e E) E
	Unique func(e E) string

	// FailWith 非nil时所有操作返回该错误
	FailWith error

	mu   sync.Mutex
	rows []E
	ops  []string
}

// New 创建内存仓储
func New[E resource.Entity](lookup func(e E, field string) []string, clone func(e E) E) *Repo[E] {
	return &Repo[E]{Lookup: lookup, Clone: clone}
}

// Seed 直接写入记录，ID为空时自动生成
func (r *Repo[E]) Seed(rows ...E) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range rows {
		if e.GetID() == uuid.Nil {
			e.SetID(uuid.New())
		}
		r.rows = append(r.rows, r.clone(e))
	}
}

// Len 当前记录数
func (r *Repo[E]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// Rows 所有记录的副本
func (r *Repo[E]) Rows() []E {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]E, len(r.rows))
	for i, e := range r.rows {
		out[i] = r.clone(e)
	}
	return out
}

// Ops 操作记录，处于事务内的操作带"@tx"后缀
func (r *Repo[E]) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func (r *Repo[E]) record(ctx context.Context, op string) {
	if InTx(ctx) {
		op += "@tx"
	}
	r.ops = append(r.ops, op)
}

func (r *Repo[E]) clone(e E) E {
	if r.Clone == nil {
		return e
	}
	return r.Clone(e)
}

func (r *Repo[E]) match(preds []query.Predicate) []E {
	var out []E
	for _, e := range r.rows {
		e := e
		if query.Match(preds, func(field string) []string { return r.Lookup(e, field) }) {
			out = append(out, e)
		}
	}
	return out
}

func (r *Repo[E]) indexOf(id uuid.UUID) int {
	for i, e := range r.rows {
		if e.GetID() == id {
			return i
		}
	}
	return -1
}

func (r *Repo[E]) Count(ctx context.Context, preds []query.Predicate) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(ctx, "Count")
	if r.FailWith != nil {
		return 0, r.FailWith
	}
	return int64(len(r.match(preds))), nil
}

func (r *Repo[E]) FetchWindow(ctx context.Context, preds []query.Predicate, offset, limit int) ([]E, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(ctx, "FetchWindow")
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	matched := r.match(preds)
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]E, 0, end-offset)
	for _, e := range matched[offset:end] {
		out = append(out, r.clone(e))
	}
	return out, nil
}

func (r *Repo[E]) FetchByID(ctx context.Context, id uuid.UUID) (E, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(ctx, "FetchByID")
	var zero E
	if r.FailWith != nil {
		return zero, r.FailWith
	}
	i := r.indexOf(id)
	if i < 0 {
		return zero, resource.ErrRowNotFound
	}
	return r.clone(r.rows[i]), nil
}

func (r *Repo[E]) FindOne(ctx context.Context, preds []query.Predicate) (E, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(ctx, "FindOne")
	var zero E
	if r.FailWith != nil {
		return zero, r.FailWith
	}
	matched := r.match(preds)
	if len(matched) == 0 {
		return zero, resource.ErrRowNotFound
	}
	return r.clone(matched[0]), nil
}

func (r *Repo[E]) Insert(ctx context.Context, e E) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(ctx, "Insert")
	if r.FailWith != nil {
		return r.FailWith
	}
	if r.indexOf(e.GetID()) >= 0 || r.conflicts(e) {
		return resource.ErrDuplicateKey
	}
	r.rows = append(r.rows, r.clone(e))
	return nil
}

func (r *Repo[E]) Update(ctx context.Context, e E) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(ctx, "Update")
	if r.FailWith != nil {
		return r.FailWith
	}
	i := r.indexOf(e.GetID())
	if i < 0 {
		return resource.ErrRowNotFound
	}
	r.rows[i] = r.clone(e)
	return nil
}

func (r *Repo[E]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(ctx, "DeleteByID")
	if r.FailWith != nil {
		return r.FailWith
	}
	if i := r.indexOf(id); i >= 0 {
		r.rows = append(r.rows[:i], r.rows[i+1:]...)
	}
	return nil
}

func (r *Repo[E]) conflicts(e E) bool {
	if r.Unique == nil {
		return false
	}
	key := r.Unique(e)
	if key == "" {
		return false
	}
	for _, row := range r.rows {
		if r.Unique(row) == key {
			return true
		}
	}
	return false
}
