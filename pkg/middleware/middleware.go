// Package middleware 提供 Gin 通用中间件（日志、trace、panic recover、指标、限流、鉴权）
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wyfcoding/loanapplication/pkg/logger"
	"github.com/wyfcoding/loanapplication/pkg/metrics"
	"github.com/wyfcoding/loanapplication/pkg/response"
)

const (
	// HeaderRequestID 请求 ID 头
	HeaderRequestID = "X-Request-ID"
	// HeaderTraceID trace ID 头
	HeaderTraceID = "X-Trace-ID"
)

// GinLoggingMiddleware 为请求注入 request_id/trace_id 并记录访问日志
func GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.ContextWithRequestID(c.Request.Context(), requestID)
		ctx = logger.ContextWithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)

		start := time.Now()
		c.Next()

		logger.Info(ctx, "HTTP request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
			"status_code", c.Writer.Status(),
			"response_size", c.Writer.Size(),
			"duration", time.Since(start),
		)
	}
}

// GinRecoveryMiddleware panic 恢复
func GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "HTTP request panicked", "panic", rec)
				response.ErrorWithStatus(c, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
			}
		}()
		c.Next()
	}
}

// GinMetricsMiddleware 记录请求计数与耗时，按路由模板聚合
func GinMetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
