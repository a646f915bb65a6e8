// Package paging 分页请求与分页结果
package paging

import (
	"math"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

const (
	DefaultSize = 10  // 默认每页条数
	MaxSize     = 100 // 每页上限
)

// Request 分页请求
// Index从0开始
type Request struct {
	Index int
	Size  int
}

// Normalize 按接口默认值修正分页参数
// index<0 → 0；size<1 → DefaultSize；size>maxSize → maxSize
func Normalize(index, size, maxSize int) Request {
	if index < 0 {
		index = 0
	}
	if size < 1 {
		size = DefaultSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return Request{Index: index, Size: size}
}

// Validate 校验分页参数
func (r Request) Validate() error {
	if r.Index < 0 {
		return apperrors.ErrValidation.WithMessage("页码不能为负数")
	}
	if r.Size < 1 {
		return apperrors.ErrValidation.WithMessage("每页条数必须大于0")
	}
	// Index*Size必须能用int表示，否则Offset溢出为负数
	if r.Index > math.MaxInt/r.Size {
		return apperrors.ErrValidation.WithMessage("页码过大")
	}
	return nil
}

// Offset 窗口起始位置，调用前需通过Validate
func (r Request) Offset() int {
	return r.Index * r.Size
}

// Limit 窗口大小
func (r Request) Limit() int {
	return r.Size
}

// Page 一页查询结果
// Rows与TotalRowCount来自同一过滤条件
type Page[T any] struct {
	Rows           []T   `json:"rows"`
	TotalRowCount  int64 `json:"totalRowCount"`
	TotalPageCount int64 `json:"totalPageCount"`
}

// New 组装分页结果
func New[T any](rows []T, total int64, req Request) *Page[T] {
	if rows == nil {
		rows = []T{}
	}
	return &Page[T]{
		Rows:           rows,
		TotalRowCount:  total,
		TotalPageCount: TotalPages(total, req.Size),
	}
}

// TotalPages 总页数 = ceil(total/size)
// 空结果返回0页，不补"第1页"
func TotalPages(total int64, size int) int64 {
	if size <= 0 || total <= 0 {
		return 0
	}
	s := int64(size)
	return (total + s - 1) / s
}

// Map 转换每一行，分页信息保持不变
func Map[T, R any](p *Page[T], fn func(T) R) *Page[R] {
	rows := make([]R, len(p.Rows))
	for i, row := range p.Rows {
		rows[i] = fn(row)
	}
	return &Page[R]{
		Rows:           rows,
		TotalRowCount:  p.TotalRowCount,
		TotalPageCount: p.TotalPageCount,
	}
}
