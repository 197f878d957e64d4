package restapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"massa_gateway/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
	functionsPrefix = "/functions/v1/"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "POST, GET, OPTIONS, PUT, DELETE",
}

// CORSHeaders sets the fixed CORS header set on every response and answers
// preflight requests with an empty 200.
func CORSHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range corsHeaders {
			c.Header(k, v)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// PostOnly rejects every method other than POST.
func PostOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			writeError(c, http.StatusMethodNotAllowed, "Method not allowed. Please use POST request.")
			return
		}
		c.Next()
	}
}

// Recovery turns a panic into the 500 error envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error("Recovered from panic in request handler",
			zap.String("path", c.Request.URL.Path),
			zap.String("requestId", c.GetString(ctxRequestID)),
			zap.Any("panic", recovered),
		)
		writeError(c, http.StatusInternalServerError, "An internal error occurred")
	})
}

// RateLimit limits requests per client IP. A non-positive perMinute disables it.
func RateLimit(perMinute int64) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  perMinute,
	}
	return ginlimiter.NewMiddleware(
		limiter.New(memory.NewStore(), rate),
		ginlimiter.WithLimitReachedHandler(func(c *gin.Context) {
			writeError(c, http.StatusTooManyRequests, "Too many requests. Please slow down.")
		}),
		ginlimiter.WithErrorHandler(func(c *gin.Context, err error) {
			writeError(c, http.StatusInternalServerError, fmt.Sprintf("Rate limiter failure: %v", err))
		}),
	)
}

// FunctionMetrics records the count and latency of each function request.
func FunctionMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		function := strings.TrimPrefix(c.FullPath(), functionsPrefix)
		m.ObserveFunction(function, c.Writer.Status(), time.Since(start))
	}
}

// RequestLogger writes one access log line per request and tags it with a
// request id, reusing the caller's X-Request-ID when present.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(headerRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("requestId", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIP", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request handled", fields...)
		}
	}
}
