package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookhub/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/logger"
)

// SessionStore 会话存储
// 设计说明：
// 1. 使用Redis存储账号登录会话
// 2. 支持JWT黑名单（登出后Token立即失效）
// 3. Key设计：session:{account_id}、blacklist:{token}
// 4. 所有调用经过熔断器，Redis故障时快速失败
type SessionStore struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{
		client: client,
		breaker: circuitbreaker.NewCircuitBreaker("redis-session", circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     10 * time.Second,
		}),
	}
}

func sessionKey(accountID uuid.UUID) string {
	return "session:" + accountID.String()
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// do 经熔断器执行Redis调用，错误统一包装为REDIS_ERROR
func (s *SessionStore) do(message string, fn func() error) error {
	err := s.breaker.Execute(fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		return &apperrors.AppError{Code: apperrors.ErrCodeRedisError, Message: "缓存服务暂不可用", Err: err}
	}
	return &apperrors.AppError{Code: apperrors.ErrCodeRedisError, Message: message, Err: err}
}

// SaveSession 保存账号会话（登录时间、角色等），过期时间与Refresh Token一致
func (s *SessionStore) SaveSession(ctx context.Context, accountID uuid.UUID, data map[string]interface{}, ttl time.Duration) error {
	key := sessionKey(accountID)
	return s.do("保存会话失败", func() error {
		// Pipeline合并HSET和EXPIRE，减少网络往返
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, data)
			pipe.Expire(ctx, key, ttl)
			return nil
		})
		return err
	})
}

// GetSession 获取账号会话，不存在时返回NOT_AUTHENTICATED
func (s *SessionStore) GetSession(ctx context.Context, accountID uuid.UUID) (map[string]string, error) {
	var result map[string]string
	err := s.do("获取会话失败", func() error {
		var err error
		result, err = s.client.HGetAll(ctx, sessionKey(accountID)).Result()
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, apperrors.ErrNotAuthenticated
	}
	return result, nil
}

// DeleteSession 删除账号会话（用于登出）
func (s *SessionStore) DeleteSession(ctx context.Context, accountID uuid.UUID) error {
	return s.do("删除会话失败", func() error {
		return s.client.Del(ctx, sessionKey(accountID)).Err()
	})
}

// Revoke 将Token加入黑名单，ttl取Access Token有效期，过期后自动清理
func (s *SessionStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return s.do("添加Token到黑名单失败", func() error {
		return s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err()
	})
}

// IsRevoked 检查Token是否在黑名单中
// Redis不可用时放行（只记录告警），避免缓存故障导致全站无法鉴权
func (s *SessionStore) IsRevoked(ctx context.Context, token string) bool {
	var n int64
	err := s.do("检查黑名单失败", func() error {
		var err error
		n, err = s.client.Exists(ctx, blacklistKey(token)).Result()
		return err
	})
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("breaker", s.breaker.State().String()).Msg("黑名单检查失败，按未注销处理")
		return false
	}
	return n > 0
}
