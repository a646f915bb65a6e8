package tag

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

const Family = "TAG"

// Tag 标签
type Tag struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	BookCount int64
}

func (t *Tag) GetID() uuid.UUID   { return t.ID }
func (t *Tag) SetID(id uuid.UUID) { t.ID = id }

func (t *Tag) NaturalKey() []query.Predicate {
	if t.Name == "" {
		return nil
	}
	return query.New().Eq("name", t.Name).Build()
}

func (t *Tag) Validate() error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return ErrNameRequired
	}
	return nil
}

func (t *Tag) IsReference() bool {
	return t.ID != uuid.Nil && t.Name == ""
}

type Filter struct {
	Name string
}

func (f Filter) Predicates() []query.Predicate {
	return query.New().ILike("name", f.Name).Build()
}

var (
	ErrNotFound     = apperrors.ErrNotFound.In(Family).WithMessage("标签不存在")
	ErrNameRequired = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "标签名称不能为空")
)

type Repository = resource.Repository[*Tag]

type Service = resource.Service[*Tag, Filter]

func NewService(repo Repository, tx resource.TxRunner) *Service {
	return resource.NewService[*Tag, Filter](resource.Config{
		Name:   "tag",
		Family: Family,
		Mode:   resource.ModeUpsert,
	}, repo, tx)
}
