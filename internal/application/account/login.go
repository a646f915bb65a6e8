package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookhub/internal/domain/account"
	"github.com/xiebiao/bookhub/internal/domain/auth"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/jwt"
	"github.com/xiebiao/bookhub/pkg/logger"
)

// Sessions 登录会话存储，由Redis实现
type Sessions interface {
	SaveSession(ctx context.Context, accountID uuid.UUID, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, accountID uuid.UUID) error
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// LoginUseCase 登录用例
// 设计说明：
// 1. 用户名不存在返回ACCOUNT/NOT_FOUND，密码错误返回ACCOUNT/INVALID_PASSWORD
// 2. 生成JWT Token对，Token携带账号ID与角色
// 3. 保存会话到Redis，失败不影响登录
type LoginUseCase struct {
	accounts   *account.Service
	jwtManager *jwt.Manager
	sessions   Sessions
	sessionTTL time.Duration
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(accounts *account.Service, jwtManager *jwt.Manager, sessions Sessions, sessionTTL time.Duration) *LoginUseCase {
	return &LoginUseCase{
		accounts:   accounts,
		jwtManager: jwtManager,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	acct, err := uc.accounts.FindOne(ctx, account.Filter{Username: strings.TrimSpace(req.Username)})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
			return nil, account.ErrNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.Password), []byte(req.Password)); err != nil {
		return nil, account.ErrInvalidPassword
	}

	tokens, err := uc.jwtManager.GenerateToken(acct.ID.String(), acct.Username, string(acct.Role))
	if err != nil {
		return nil, err
	}

	session := map[string]interface{}{
		"username": acct.Username,
		"role":     string(acct.Role),
		"login_at": time.Now().Unix(),
		"ip":       req.IP,
	}
	if err := uc.sessions.SaveSession(ctx, acct.ID, session, uc.sessionTTL); err != nil {
		logger.C(ctx).Warn().Err(err).Str("account_id", acct.ID.String()).Msg("保存会话失败")
	}

	return &LoginResponse{
		ID:           acct.ID,
		Username:     acct.Username,
		Role:         acct.Role,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}, nil
}

// LogoutUseCase 登出用例
type LogoutUseCase struct {
	sessions   Sessions
	jwtManager *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessions Sessions, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{sessions: sessions, jwtManager: jwtManager}
}

// Execute 删除会话并把Access Token加入黑名单（防止Token在过期前继续使用）
func (uc *LogoutUseCase) Execute(ctx context.Context, p *auth.Principal, accessToken string) error {
	if p == nil {
		return apperrors.ErrNotAuthenticated
	}
	if err := uc.sessions.DeleteSession(ctx, p.ID); err != nil {
		return err
	}
	return uc.sessions.Revoke(ctx, accessToken, uc.jwtManager.AccessTokenExpire())
}

// RefreshUseCase 用Refresh Token换取新的Access Token
// 角色按账号当前角色重新签发
type RefreshUseCase struct {
	accounts   *account.Service
	jwtManager *jwt.Manager
}

func NewRefreshUseCase(accounts *account.Service, jwtManager *jwt.Manager) *RefreshUseCase {
	return &RefreshUseCase{accounts: accounts, jwtManager: jwtManager}
}

func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (string, error) {
	claims, err := uc.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}
	if !claims.Refresh {
		return "", apperrors.ErrInvalidToken
	}
	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}
	acct, err := uc.accounts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrInvalidToken
		}
		return "", err
	}
	return uc.jwtManager.RefreshAccessToken(refreshToken, string(acct.Role))
}

// =========================================
// 应用层DTO
// =========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
	IP       string
}

// LoginResponse 登录响应
type LoginResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Role         auth.Role `json:"role"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"` // Access Token过期时间（秒）
}
