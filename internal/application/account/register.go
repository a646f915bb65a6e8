package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookhub/internal/domain/account"
	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// RegisterUseCase 账号注册用例
// 设计说明：
// 1. 明文密码只在这里出现，校验长度后立即bcrypt加密
// 2. 账号服务是只插入模式，用户名重复返回ACCOUNT/ALREADY_EXISTS
// 3. 用户名在auth.moderators名单中的账号注册为管理员
type RegisterUseCase struct {
	accounts *account.Service
	cfg      config.AuthConfig
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(accounts *account.Service, cfg *config.Config) *RegisterUseCase {
	return &RegisterUseCase{
		accounts: accounts,
		cfg:      cfg.Auth,
	}
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	username := strings.TrimSpace(req.Username)
	if err := account.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := account.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), uc.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	role := auth.RoleUser
	if uc.cfg.IsModerator(username) {
		role = auth.RoleModerator
	}

	saved, err := uc.accounts.Save(ctx, nil, &account.Account{
		Username: username,
		Password: string(hash),
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, account.ErrAlreadyExists
		}
		return nil, err
	}

	return &RegisterResponse{
		ID:       saved.ID,
		Username: saved.Username,
		Role:     saved.Role,
	}, nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string
	Password string
}

// RegisterResponse 注册响应
// 说明：不返回密码字段
type RegisterResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
}
