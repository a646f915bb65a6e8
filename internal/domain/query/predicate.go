// Package query 过滤条件构建
//
// 过滤字段为空表示"不限制"，绝不表示"匹配不到"：
// 所有字段都为空时Build返回nil，仓储据此生成不带WHERE的查询
package query

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Op 比较操作
type Op int

const (
	OpEq      Op = iota // 精确匹配
	OpILike             // 忽略大小写的子串匹配
	OpNotNull           // 字段非空
	OpAny               // 子条件OR组合
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpILike:
		return "ilike"
	case OpNotNull:
		return "notnull"
	case OpAny:
		return "any"
	default:
		return "unknown"
	}
}

// Predicate 单个过滤条件
// Field是逻辑字段名（如 name、issuer.name、bookId），由仓储映射到具体列
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
	Any   []Predicate
}

func (p Predicate) String() string {
	if p.Op == OpAny {
		parts := make([]string, len(p.Any))
		for i, sub := range p.Any {
			parts[i] = sub.String()
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	}
	if p.Op == OpNotNull {
		return p.Field + " notnull"
	}
	return fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value)
}

// Filter 各资源的过滤条件
type Filter interface {
	Predicates() []Predicate
}

// None 空过滤条件
type None struct{}

// Predicates 无条件
func (None) Predicates() []Predicate { return nil }

// Builder 按非空字段组合AND条件
type Builder struct {
	preds []Predicate
}

// New 创建Builder
func New() *Builder {
	return &Builder{}
}

// EqID 标识符精确匹配，nil或零值跳过
func (b *Builder) EqID(field string, id *uuid.UUID) *Builder {
	if id == nil || *id == uuid.Nil {
		return b
	}
	b.preds = append(b.preds, Predicate{Field: field, Op: OpEq, Value: *id})
	return b
}

// Eq 精确匹配，总是添加（用于业务主键查找）
func (b *Builder) Eq(field string, value interface{}) *Builder {
	b.preds = append(b.preds, Predicate{Field: field, Op: OpEq, Value: value})
	return b
}

// ILike 忽略大小写的子串匹配，空白字符串跳过
func (b *Builder) ILike(field, value string) *Builder {
	value = strings.TrimSpace(value)
	if value == "" {
		return b
	}
	b.preds = append(b.preds, Predicate{Field: field, Op: OpILike, Value: value})
	return b
}

// AnyILike 在多个字段上做OR子串匹配（关键字全文搜索），空白字符串跳过
func (b *Builder) AnyILike(value string, fields ...string) *Builder {
	value = strings.TrimSpace(value)
	if value == "" || len(fields) == 0 {
		return b
	}
	group := make([]Predicate, len(fields))
	for i, f := range fields {
		group[i] = Predicate{Field: f, Op: OpILike, Value: value}
	}
	b.preds = append(b.preds, Predicate{Op: OpAny, Any: group})
	return b
}

// NotNull 字段非空
func (b *Builder) NotNull(field string) *Builder {
	b.preds = append(b.preds, Predicate{Field: field, Op: OpNotNull})
	return b
}

// Build 返回AND条件列表，没有条件时返回nil
func (b *Builder) Build() []Predicate {
	if len(b.preds) == 0 {
		return nil
	}
	out := make([]Predicate, len(b.preds))
	copy(out, b.preds)
	return out
}

// Lookup 返回某行在逻辑字段上的取值，关联字段可能有多个值，空切片表示NULL
type Lookup func(field string) []string

// Match 在内存中求值，语义与SQL翻译保持一致
func Match(preds []Predicate, lookup Lookup) bool {
	for _, p := range preds {
		if !matchOne(p, lookup) {
			return false
		}
	}
	return true
}

func matchOne(p Predicate, lookup Lookup) bool {
	switch p.Op {
	case OpAny:
		for _, sub := range p.Any {
			if matchOne(sub, lookup) {
				return true
			}
		}
		return false
	case OpNotNull:
		return len(lookup(p.Field)) > 0
	case OpEq:
		want := fmt.Sprint(p.Value)
		for _, v := range lookup(p.Field) {
			if v == want {
				return true
			}
		}
		return false
	case OpILike:
		want := strings.ToLower(fmt.Sprint(p.Value))
		for _, v := range lookup(p.Field) {
			if strings.Contains(strings.ToLower(v), want) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
