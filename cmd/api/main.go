// Package main bookhub API服务入口
//
// @title                       bookhub API
// @version                     1.0
// @description                 社区书库：图书、作者、出版社、标签的管理，以及评论、投票、收藏
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 格式：Bearer <access_token>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/xiebiao/bookhub/docs"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/pkg/logger"
	"github.com/xiebiao/bookhub/pkg/tracing"
	"github.com/xiebiao/bookhub/pkg/validator"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	out, err := logOutput(cfg.Log.Output)
	if err != nil {
		log.Fatalf("打开日志输出失败: %v", err)
	}
	defer out.Close()
	logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Service:    "bookhub-api",
		Writer:     out,
		WithCaller: cfg.Log.EnableCaller,
	})
	mainLog := logger.Named("main")
	mainLog.Info().
		Int("port", cfg.Server.Port).
		Str("mode", cfg.Server.Mode).
		Str("database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)).
		Str("redis", cfg.Redis.Addr()).
		Str("storage", cfg.Storage.Driver).
		Msg("配置加载成功")

	// 3. 注册自定义校验tag
	if err := validator.Register(); err != nil {
		mainLog.Fatal().Err(err).Msg("注册校验规则失败")
	}

	// 4. 链路追踪
	ctx := context.Background()
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		mainLog.Fatal().Err(err).Msg("初始化链路追踪失败")
	}

	// 5. 组装依赖
	engine, cleanup, err := newApp(ctx, cfg)
	if err != nil {
		mainLog.Fatal().Err(err).Msg("初始化应用失败")
	}
	defer cleanup()

	var h http.Handler = engine
	if cfg.Tracing.Enabled {
		h = otelhttp.NewHandler(engine, cfg.Tracing.ServiceName)
	}

	// 6. 启动服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		mainLog.Info().Str("addr", srv.Addr).Msg("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLog.Fatal().Err(err).Msg("启动服务失败")
		}
	}()

	// 7. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	mainLog.Info().Msg("正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLog.Error().Err(err).Msg("服务强制关闭")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		mainLog.Warn().Err(err).Msg("关闭链路追踪失败")
	}
	mainLog.Info().Msg("服务已退出")
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// logOutput stdout | stderr | 文件路径
func logOutput(output string) (io.WriteCloser, error) {
	switch output {
	case "", "stdout":
		return nopCloser{os.Stdout}, nil
	case "stderr":
		return nopCloser{os.Stderr}, nil
	default:
		return os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}
}
