package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/jwt"
	"github.com/xiebiao/bookhub/pkg/response"
)

// Context中的键
const (
	principalKey = "principal"
	tokenKey     = "access_token"
)

// Revoker Token黑名单查询
type Revoker interface {
	IsRevoked(ctx context.Context, token string) bool
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Bearer Token
// 2. 验证签名与有效期，只接受Access Token
// 3. 检查Token黑名单（登出后立即失效）
// 4. 将调用者（Principal）注入Context，Handler显式传给领域服务
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	revoker    Revoker
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, revoker Revoker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		revoker:    revoker,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	comments.POST("", authMiddleware.RequireAuth(), commentHandler.Save)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, apperrors.ErrNotAuthenticated)
			c.Abort()
			return
		}
		if err := m.authenticate(c, token); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth 可选登录
// 没有Token或Token无效时按匿名用户继续，由领域服务决定是否拒绝
// 用于评论、投票、收藏的删除：未登录/不存在/无权限的判断顺序由领域层保证
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			_ = m.authenticate(c, token)
		}
		c.Next()
	}
}

// RequireRole 要求指定角色，需放在RequireAuth之后
func (m *AuthMiddleware) RequireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			response.Error(c, apperrors.ErrNotAuthenticated)
			c.Abort()
			return
		}
		if p.Role != role {
			response.Error(c, apperrors.ErrNotAuthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) error {
	claims, err := m.jwtManager.ParseAccessToken(token)
	if err != nil {
		return err
	}
	if m.revoker != nil && m.revoker.IsRevoked(c.Request.Context(), token) {
		return apperrors.ErrTokenExpired.WithMessage("Token已失效，请重新登录")
	}
	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	c.Set(principalKey, &auth.Principal{
		ID:       id,
		Username: claims.Username(),
		Role:     auth.Role(claims.Role),
	})
	c.Set(tokenKey, token)
	return nil
}

// bearerToken 格式：Authorization: Bearer <token>
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetPrincipal 当前调用者，未登录返回nil
func GetPrincipal(c *gin.Context) *auth.Principal {
	if v, exists := c.Get(principalKey); exists {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}

// GetToken 当前请求携带的Access Token（登出时加入黑名单）
func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
