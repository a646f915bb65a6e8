//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 1. 本文件只在 `wire gen ./cmd/api` 时参与编译
// 2. Wire在编译期生成wire_gen.go，内容与app.go中的手动组装等价
// 3. 新增依赖时两处同步修改

package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appaccount "github.com/xiebiao/bookhub/internal/application/account"
	appimage "github.com/xiebiao/bookhub/internal/application/image"
	"github.com/xiebiao/bookhub/internal/application/interaction"
	"github.com/xiebiao/bookhub/internal/domain/account"
	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/domain/favourite"
	"github.com/xiebiao/bookhub/internal/domain/image"
	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	"github.com/xiebiao/bookhub/internal/domain/tag"
	"github.com/xiebiao/bookhub/internal/domain/vote"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookhub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookhub/internal/infrastructure/storage"
	"github.com/xiebiao/bookhub/internal/interface/http/handler"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/internal/interface/http/router"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	mysql.NewDB,       // MySQL连接
	redis.NewClient,   // Redis连接
	storage.New,       // 图片存储（local | gcs）
	providePublisher,  // RabbitMQ事件发布
	mysql.NewTxManager,
	wire.Bind(new(resource.TxRunner), new(*mysql.TxManager)),
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewAccountRepository,
	mysql.NewAuthorRepository,
	mysql.NewIssuerRepository,
	mysql.NewTagRepository,
	mysql.NewBookRepository,
	mysql.NewCommentRepository,
	mysql.NewVoteRepository,
	mysql.NewFavouriteRepository,
	mysql.NewImageRepository,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	account.NewService,
	author.NewService,
	issuer.NewService,
	tag.NewService,
	book.NewService, // 依赖出版社、作者、标签服务
	comment.NewService,   // 依赖图书、作者、出版社服务
	vote.NewService,      // 依赖评论及其对象的服务
	favourite.NewService,
	image.NewService,
)

// applicationSet 应用层用例
var applicationSet = wire.NewSet(
	appaccount.NewRegisterUseCase,
	provideLoginUseCase,
	provideLogoutUseCase,
	appaccount.NewRefreshUseCase,
	provideUploadUseCase,
	appimage.NewGetUseCase,
	interaction.NewNotifier,
)

// middlewareSet JWT与认证中间件
var middlewareSet = wire.NewSet(
	provideJWTManager,
	redis.NewSessionStore,
	wire.Bind(new(middleware.Revoker), new(*redis.SessionStore)),
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器
var handlerSet = wire.NewSet(
	handler.NewAccountHandler,
	handler.NewAuthorHandler,
	handler.NewIssuerHandler,
	handler.NewTagHandler,
	handler.NewBookHandler,
	handler.NewCommentHandler,
	handler.NewVoteHandler,
	handler.NewFavouriteHandler,
	handler.NewImageHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 初始化整个应用
// 返回配置好的Gin引擎和释放连接的cleanup函数
func InitializeApp(ctx context.Context, cfg *config.Config) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
	)
	return nil, nil, nil
}
