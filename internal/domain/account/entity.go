package account

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// Family 错误业务域
const Family = "ACCOUNT"

// 用户名与明文密码的长度范围
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 6
	MaxPasswordLength = 64
)

// Account 账号实体(聚合根)
// DDD设计说明:
// 1. Username是业务主键,注册时只插入不更新
// 2. Password是bcrypt哈希值,由调用方加密后再保存
type Account struct {
	ID        uuid.UUID
	Username  string
	Password  string // bcrypt哈希值
	Role      auth.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Account) GetID() uuid.UUID   { return a.ID }
func (a *Account) SetID(id uuid.UUID) { a.ID = id }

// NaturalKey 按用户名匹配
func (a *Account) NaturalKey() []query.Predicate {
	if a.Username == "" {
		return nil
	}
	return query.New().Eq("username", a.Username).Build()
}

// Validate 保存前校验
func (a *Account) Validate() error {
	a.Username = strings.TrimSpace(a.Username)
	if err := ValidateUsername(a.Username); err != nil {
		return err
	}
	if a.Password == "" {
		return ErrPasswordRequired
	}
	if a.Role == "" {
		a.Role = auth.RoleUser
	}
	if !a.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// Principal 登录后的调用者身份
func (a *Account) Principal() *auth.Principal {
	return &auth.Principal{ID: a.ID, Username: a.Username, Role: a.Role}
}

// ValidateUsername 用户名长度校验
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword 明文密码长度校验(加密前调用)
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Filter 账号查询条件,用户名精确匹配
type Filter struct {
	Username string
}

func (f Filter) Predicates() []query.Predicate {
	if f.Username == "" {
		return nil
	}
	return query.New().Eq("username", f.Username).Build()
}

// 账号领域错误定义
var (
	ErrNotFound         = apperrors.ErrNotFound.In(Family).WithMessage("用户名不存在")
	ErrAlreadyExists    = apperrors.ErrAlreadyExists.In(Family).WithMessage("用户名已存在")
	ErrInvalidPassword  = apperrors.ErrInvalidPassword.In(Family)
	ErrInvalidUsername  = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "用户名长度应为3-32个字符")
	ErrWeakPassword     = apperrors.NewIn(Family, apperrors.ErrCodeWeakPassword, "密码长度应为6-64个字符")
	ErrPasswordRequired = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "密码不能为空")
	ErrInvalidRole      = apperrors.NewIn(Family, apperrors.ErrCodeInvalidParams, "无效的角色")
)

// Repository 账号仓储接口
type Repository = resource.Repository[*Account]

// Service 账号服务
type Service = resource.Service[*Account, Filter]

// NewService 创建账号服务(只插入,用户名重复返回ALREADY_EXISTS)
func NewService(repo Repository, tx resource.TxRunner) *Service {
	return resource.NewService[*Account, Filter](resource.Config{
		Name:   "account",
		Family: Family,
		Mode:   resource.ModeInsertOnly,
	}, repo, tx)
}
