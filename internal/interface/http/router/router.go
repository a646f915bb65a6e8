// Package router 注册HTTP路由
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/bookhub/internal/domain/auth"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/interface/http/handler"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/pkg/metrics"
	"github.com/xiebiao/bookhub/pkg/response"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	Account   *handler.AccountHandler
	Author    *handler.AuthorHandler
	Issuer    *handler.IssuerHandler
	Tag       *handler.TagHandler
	Book      *handler.BookHandler
	Comment   *handler.CommentHandler
	Vote      *handler.VoteHandler
	Favourite *handler.FavouriteHandler
	Image     *handler.ImageHandler
}

// New 创建Gin引擎并注册路由
// 路由权限：
// 1. 作者/出版社/标签/图书的保存和删除需要管理员
// 2. 评论/投票/收藏的保存需要登录
// 3. 评论/投票/收藏的删除用可选登录，由领域层按"登录 → 存在 → 权限"的顺序判断
func New(cfg *config.Config, h *Handlers, authMiddleware *middleware.AuthMiddleware) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Logger(), middleware.Recovery(), middleware.CORS(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(metrics.GinMiddleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Swagger文档，访问 /swagger/index.html
	if cfg.Server.Mode != "release" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireAuth := authMiddleware.RequireAuth()
	optionalAuth := authMiddleware.OptionalAuth()
	moderator := []gin.HandlerFunc{requireAuth, authMiddleware.RequireRole(auth.RoleModerator)}

	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/auth")
		{
			accounts.POST("/register", h.Account.Register)
			accounts.POST("/login", h.Account.Login)
			accounts.POST("/refresh", h.Account.Refresh)
			accounts.POST("/logout", requireAuth, h.Account.Logout)
		}

		catalog := []struct {
			path                         string
			list, get, save, deleteByID gin.HandlerFunc
		}{
			{"/authors", h.Author.List, h.Author.Get, h.Author.Save, h.Author.Delete},
			{"/issuers", h.Issuer.List, h.Issuer.Get, h.Issuer.Save, h.Issuer.Delete},
			{"/tags", h.Tag.List, h.Tag.Get, h.Tag.Save, h.Tag.Delete},
			{"/books", h.Book.List, h.Book.Get, h.Book.Save, h.Book.Delete},
		}
		for _, res := range catalog {
			g := v1.Group(res.path)
			g.GET("", res.list)
			g.GET("/:id", res.get)
			g.PUT("", append(moderator, res.save)...)
			g.DELETE("/:id", append(moderator, res.deleteByID)...)
		}

		comments := v1.Group("/comments")
		{
			comments.GET("", h.Comment.List)
			comments.GET("/:id", h.Comment.Get)
			comments.PUT("", requireAuth, h.Comment.Save)
			comments.DELETE("/:id", optionalAuth, h.Comment.Delete)
		}

		votes := v1.Group("/votes")
		{
			votes.GET("", requireAuth, h.Vote.List)
			votes.GET("/state", optionalAuth, h.Vote.State)
			votes.PUT("", requireAuth, h.Vote.Save)
			votes.DELETE("/:id", optionalAuth, h.Vote.Delete)
		}

		favourites := v1.Group("/favourites")
		{
			favourites.GET("", requireAuth, h.Favourite.List)
			favourites.GET("/state", optionalAuth, h.Favourite.State)
			favourites.PUT("", requireAuth, h.Favourite.Save)
			favourites.DELETE("/:id", optionalAuth, h.Favourite.Delete)
		}

		images := v1.Group("/images")
		{
			images.POST("", requireAuth, h.Image.Upload)
			images.GET("/:id", h.Image.Get)
		}
	}

	return r
}
