package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/paging"
)

// TimeLayout 响应中的时间格式
const TimeLayout = "2006-01-02 15:04:05"

// PageQuery 分页查询参数
// index从0开始，size缺省为10
type PageQuery struct {
	Index int `form:"index" binding:"omitempty,min=0" example:"0"`
	Size  int `form:"size" binding:"omitempty,min=1" example:"10"`
}

// Request 转换为分页请求，size超过maxSize时截断
func (q PageQuery) Request(maxSize int) paging.Request {
	return paging.Normalize(q.Index, q.Size, maxSize)
}

// Ref 只带ID的引用
type Ref struct {
	ID uuid.UUID `json:"id" binding:"required" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
}

// ParseOptionalID 解析可选的UUID查询参数，空串返回nil
func ParseOptionalID(name, value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, apperrors.ErrBindError.WithMessage("参数错误: " + name + "不是合法的UUID")
	}
	return &id, nil
}

// FormatTime 零值返回空串
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

func refIDs(refs []Ref) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}

func toRefs(ids []uuid.UUID) []Ref {
	refs := make([]Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, Ref{ID: id})
	}
	return refs
}
