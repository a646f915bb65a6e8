package main

import (
	"context"

	"github.com/gin-gonic/gin"

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

// newApp 手动组装依赖
// 依赖链：Repository ← Service ← UseCase ← Handler ← Router
// 与wire.go中的Provider Sets保持一致
func newApp(ctx context.Context, cfg *config.Config) (*gin.Engine, func(), error) {
	// 基础设施层
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		redisClient.Close()
		closeDB()
		return nil, nil, err
	}
	publisher, closePublisher := providePublisher(cfg)
	cleanup := func() {
		closePublisher()
		redisClient.Close()
		closeDB()
	}

	tx := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := provideJWTManager(cfg)

	// 领域层
	accountService := account.NewService(mysql.NewAccountRepository(db), tx)
	authorService := author.NewService(mysql.NewAuthorRepository(db), tx)
	issuerService := issuer.NewService(mysql.NewIssuerRepository(db), tx)
	tagService := tag.NewService(mysql.NewTagRepository(db), tx)
	bookService := book.NewService(mysql.NewBookRepository(db), tx, issuerService, authorService, tagService)
	commentService := comment.NewService(mysql.NewCommentRepository(db), tx, bookService, authorService, issuerService)
	voteService := vote.NewService(mysql.NewVoteRepository(db), tx, issuerService, bookService, authorService, commentService)
	favouriteService := favourite.NewService(mysql.NewFavouriteRepository(db), tx, issuerService, bookService, authorService)
	imageService := image.NewService(mysql.NewImageRepository(db), tx)

	// 应用层
	notifier := interaction.NewNotifier(publisher)
	handlers := &router.Handlers{
		Account: handler.NewAccountHandler(
			appaccount.NewRegisterUseCase(accountService, cfg),
			provideLoginUseCase(accountService, jwtManager, sessionStore, cfg),
			provideLogoutUseCase(sessionStore, jwtManager),
			appaccount.NewRefreshUseCase(accountService, jwtManager),
		),
		Author:    handler.NewAuthorHandler(authorService, cfg),
		Issuer:    handler.NewIssuerHandler(issuerService, cfg),
		Tag:       handler.NewTagHandler(tagService, cfg),
		Book:      handler.NewBookHandler(bookService, cfg),
		Comment:   handler.NewCommentHandler(commentService, notifier, cfg),
		Vote:      handler.NewVoteHandler(voteService, notifier, cfg),
		Favourite: handler.NewFavouriteHandler(favouriteService, notifier, cfg),
		Image: handler.NewImageHandler(
			provideUploadUseCase(imageService, blobs, cfg),
			appimage.NewGetUseCase(imageService, blobs),
		),
	}

	// 接口层
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)
	return router.New(cfg, handlers, authMiddleware), cleanup, nil
}
