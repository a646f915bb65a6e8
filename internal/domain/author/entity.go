package author

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// Family 错误业务域
const Family = "AUTHOR"

// Gender 性别
type Gender string

const (
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderUnknown Gender = "U"
)

// Valid 是否为合法取值
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderUnknown
}

// Author 作者实体
// DDD设计说明：
// 1. (FirstName, LastName)是业务主键，保存时按它匹配已有作者
// 2. 各种计数是读取时按关联关系统计的，不落库
type Author struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Gender    Gender
	CreatedAt time.Time
	UpdatedAt time.Time

	BookCount      int64
	CommentCount   int64
	VoteCount      int64
	FavouriteCount int64
}

func (a *Author) GetID() uuid.UUID   { return a.ID }
func (a *Author) SetID(id uuid.UUID) { a.ID = id }

// FullName 显示名
func (a *Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// NaturalKey 按(名, 姓)匹配
func (a *Author) NaturalKey() []query.Predicate {
	if a.FirstName == "" || a.LastName == "" {
		return nil
	}
	return query.New().
		Eq("firstName", a.FirstName).
		Eq("lastName", a.LastName).
		Build()
}

// Validate 保存前校验
// 性别统一转成大写后校验
func (a *Author) Validate() error {
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	if a.FirstName == "" || a.LastName == "" {
		return ErrNameRequired
	}
	a.Gender = Gender(strings.ToUpper(string(a.Gender)))
	if a.Gender == "" {
		a.Gender = GenderUnknown
	}
	if !a.Gender.Valid() {
		return ErrInvalidGender
	}
	return nil
}

// IsReference 只带ID的引用（图书保存时引用已有作者）
func (a *Author) IsReference() bool {
	return a.ID != uuid.Nil && a.FirstName == "" && a.LastName == ""
}

// Filter 作者列表过滤条件
// Name同时匹配名和姓
type Filter struct {
	Name string
}

func (f Filter) Predicates() []query.Predicate {
	return query.New().AnyILike(f.Name, "firstName", "lastName").Build()
}

// 作者领域错误定义
var (
	ErrNotFound      = apperrors.ErrNotFound.In(Family).WithMessage("作者不存在")
	ErrNameRequired  = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "作者姓名不能为空")
	ErrInvalidGender = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "性别只能是M、F或U")
)

// Repository 作者仓储接口
type Repository = resource.Repository[*Author]

// Service 作者服务
type Service = resource.Service[*Author, Filter]

// NewService 创建作者服务（按业务主键upsert）
func NewService(repo Repository, tx resource.TxRunner) *Service {
	return resource.NewService[*Author, Filter](resource.Config{
		Name:   "author",
		Family: Family,
		Mode:   resource.ModeUpsert,
	}, repo, tx)
}
