package main

import (
	"time"

	appaccount "github.com/xiebiao/bookhub/internal/application/account"
	appimage "github.com/xiebiao/bookhub/internal/application/image"
	"github.com/xiebiao/bookhub/internal/domain/account"
	"github.com/xiebiao/bookhub/internal/domain/image"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookhub/pkg/circuitbreaker"
	"github.com/xiebiao/bookhub/pkg/jwt"
	"github.com/xiebiao/bookhub/pkg/logger"
	"github.com/xiebiao/bookhub/pkg/mq"
)

// ========================================
// Custom Providers
// ========================================
// 构造函数的参数需要从Config中提取时，在这里写一层Provider
// main.go的手动组装和wire.go共用

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideLoginUseCase 会话有效期与Refresh Token一致
func provideLoginUseCase(accounts *account.Service, jwtManager *jwt.Manager, sessions *redis.SessionStore, cfg *config.Config) *appaccount.LoginUseCase {
	return appaccount.NewLoginUseCase(accounts, jwtManager, sessions, cfg.JWT.RefreshTokenExpire)
}

func provideLogoutUseCase(sessions *redis.SessionStore, jwtManager *jwt.Manager) *appaccount.LogoutUseCase {
	return appaccount.NewLogoutUseCase(sessions, jwtManager)
}

func provideUploadUseCase(images *image.Service, blobs image.BlobStore, cfg *config.Config) *appimage.UploadUseCase {
	return appimage.NewUploadUseCase(images, blobs, cfg.Storage.MaxUploadSize)
}

// providePublisher 未配置mq.url时不发布事件
// RabbitMQ连接失败不阻止启动，降级为不发布
func providePublisher(cfg *config.Config) (mq.EventPublisher, func()) {
	log := logger.Named("mq")
	if !cfg.MQ.Enabled() {
		log.Info().Msg("未配置消息队列，事件不发布")
		return mq.NopPublisher{}, func() {}
	}

	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType)
	if err != nil {
		log.Warn().Err(err).Msg("连接RabbitMQ失败，事件不发布")
		return mq.NopPublisher{}, func() {}
	}

	breaker := circuitbreaker.NewCircuitBreaker("rabbitmq-publish", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	})
	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	return mq.NewGuardedPublisher(pub, breaker, cfg.MQ.Exchange), cleanup
}
