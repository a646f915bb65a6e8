// Package logger 基于zerolog的全局日志
//
// 用法：
//
//	logger.Init(logger.Options{Level: "info", Format: "json", Service: "bookhub"})
//	logger.Get().Info().Msg("服务启动")
//	logger.C(ctx).Error().Err(err).Msg("请求失败") // 自动带上request_id
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options 日志配置
type Options struct {
	Level      string    // debug | info | warn | error
	Format     string    // console | json
	Service    string    // 服务名，写入每条日志
	Writer     io.Writer // 默认os.Stdout
	WithCaller bool
}

// Logger 项目统一的日志类型
type Logger = zerolog.Logger

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init 初始化全局日志，只生效一次
func Init(opt Options) {
	once.Do(func() {
		root.Store(build(opt))
	})
}

// New 按配置构建独立的Logger（测试中常用）
func New(opt Options) *Logger {
	return build(opt)
}

func build(opt Options) *Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.EqualFold(opt.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	}

	ctx := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		ctx = ctx.Str("service", opt.Service)
	}
	l := ctx.Logger()
	if opt.WithCaller {
		l = l.With().Caller().Logger()
	}
	return &l
}

// Get 返回全局Logger，未初始化时使用默认配置
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(Options{Level: "info", Format: "console"})
	return root.Load()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

type ctxKey struct{}

// WithRequestID 将请求ID写入context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID 从context读取请求ID
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// C 返回带request_id的子Logger
func C(ctx context.Context) *Logger {
	l := Get()
	id := RequestID(ctx)
	if id == "" {
		return l
	}
	child := l.With().Str("request_id", id).Logger()
	return &child
}

// Named 返回带component字段的子Logger
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	child := Get().With().Str("component", component).Logger()
	return &child
}
