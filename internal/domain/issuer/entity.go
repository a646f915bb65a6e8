package issuer

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// Family 错误业务域
const Family = "ISSUER"

// Issuer 出版社实体
// Name是业务主键
type Issuer struct {
	ID        uuid.UUID
	Name      string
	Website   *string
	CreatedAt time.Time
	UpdatedAt time.Time

	BookCount      int64
	CommentCount   int64
	VoteCount      int64
	FavouriteCount int64
}

func (i *Issuer) GetID() uuid.UUID   { return i.ID }
func (i *Issuer) SetID(id uuid.UUID) { i.ID = id }

// NaturalKey 按名称匹配
func (i *Issuer) NaturalKey() []query.Predicate {
	if i.Name == "" {
		return nil
	}
	return query.New().Eq("name", i.Name).Build()
}

// Validate 保存前校验，空白网址视为未填写
func (i *Issuer) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		return ErrNameRequired
	}
	if i.Website != nil && strings.TrimSpace(*i.Website) == "" {
		i.Website = nil
	}
	return nil
}

// IsReference 只带ID的引用
func (i *Issuer) IsReference() bool {
	return i.ID != uuid.Nil && i.Name == ""
}

// Filter 出版社列表过滤条件
type Filter struct {
	Name string
}

func (f Filter) Predicates() []query.Predicate {
	return query.New().ILike("name", f.Name).Build()
}

var (
	ErrNotFound     = apperrors.ErrNotFound.In(Family).WithMessage("出版社不存在")
	ErrNameRequired = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "出版社名称不能为空")
)

// Repository 出版社仓储接口
type Repository = resource.Repository[*Issuer]

// Service 出版社服务
type Service = resource.Service[*Issuer, Filter]

// NewService 创建出版社服务
func NewService(repo Repository, tx resource.TxRunner) *Service {
	return resource.NewService[*Issuer, Filter](resource.Config{
		Name:   "issuer",
		Family: Family,
		Mode:   resource.ModeUpsert,
	}, repo, tx)
}
