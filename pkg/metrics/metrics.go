// Package metrics 基于Prometheus的指标收集
//
// 指标分四类：
//   - HTTP：请求总数、耗时、并发数
//   - 资源：list/get/save/delete的调用结果（按错误种类打标签）
//   - 熔断器：状态与请求结果
//   - Saga与消息队列
//
// 所有指标在包加载时注册到默认Registry，/metrics端点通过Handler()暴露
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，避免ID导致标签爆炸）、status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// ResourceOperationsTotal 资源操作总数
	// 标签：resource（author/book/comment...）、operation（list/get/save/delete）、result（ok或错误种类）
	ResourceOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_operations_total",
			Help: "资源操作总数",
		},
		[]string{"resource", "operation", "result"},
	)

	// CircuitBreakerState 熔断器状态 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests 熔断器请求总数，result: success/failure/rejected
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// SagaExecutionsTotal Saga执行总数，标签：saga、result
	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"saga", "result"},
	)

	// SagaExecutionDuration Saga执行耗时（秒）
	SagaExecutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "saga_execution_duration_seconds",
			Help:    "Saga执行耗时（秒）",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	// SagaCompensationsTotal Saga补偿执行总数
	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
	)

	// MessagesPublishedTotal 消息发布总数，result: success/failure
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)

	// MessagesConsumedTotal 消息消费总数，result: success/dropped
	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "routing_key", "result"},
	)
)

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveResource 记录一次资源操作
// result为"ok"或错误种类（NOT_FOUND、NOT_AUTHORIZED...）
func ObserveResource(resource, operation, result string) {
	ResourceOperationsTotal.WithLabelValues(resource, operation, result).Inc()
}

// ObserveSaga 记录一次Saga执行
func ObserveSaga(name string, started time.Time, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	SagaExecutionsTotal.WithLabelValues(name, result).Inc()
	SagaExecutionDuration.Observe(time.Since(started).Seconds())
}

// GinMiddleware 记录HTTP请求指标
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		HTTPRequestsInProgress.Inc()
		defer HTTPRequestsInProgress.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics端点
func Handler() http.Handler {
	return promhttp.Handler()
}
