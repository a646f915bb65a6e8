package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/logger"
	"github.com/xiebiao/bookhub/pkg/response"
)

// RequestIDHeader 请求ID头，客户端传入时沿用，否则生成
const RequestIDHeader = "X-Request-ID"

// SlowRequestThreshold 超过该耗时的请求记一条告警
var SlowRequestThreshold = 3 * time.Second

// Logger 请求日志中间件
// 1. 生成请求ID写入响应头和request context，后续logger.C(ctx)自动带上
// 2. 请求结束后按状态码选择日志级别
// 3. 不记录请求体与Authorization头
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		log := logger.C(c.Request.Context())
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Int("size", c.Writer.Size()).
			Msg("request")

		if latency > SlowRequestThreshold {
			log.Warn().
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Dur("latency", latency).
				Msg("慢请求")
		}
	}
}

// Recovery panic恢复，记录堆栈后返回统一的内部错误
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.C(c.Request.Context()).Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("请求处理panic")
		response.Error(c, apperrors.ErrInternal)
		c.Abort()
	})
}
