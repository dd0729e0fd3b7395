package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ginLoggerKey holds the request-scoped logger in the gin context
const ginLoggerKey = "logger"

// RequestLogOption configures RequestLogger
type RequestLogOption func(*requestLogConfig)

type requestLogConfig struct {
	skip map[string]bool
	slow time.Duration
}

// WithSkipPaths drops the access line of successful requests to the given
// paths, such as /health.
func WithSkipPaths(paths ...string) RequestLogOption {
	return func(c *requestLogConfig) {
		for _, p := range paths {
			c.skip[p] = true
		}
	}
}

// WithSlowRequest logs requests slower than d at warn level. Report builds
// over a year of records are the usual culprit.
func WithSlowRequest(d time.Duration) RequestLogOption {
	return func(c *requestLogConfig) { c.slow = d }
}

// RequestLogger writes one access line per request. It must run after the
// request ID middleware: the request-scoped logger and the request context
// it installs carry that ID down to the services and the GORM logger.
func RequestLogger(base *zap.Logger, opts ...RequestLogOption) gin.HandlerFunc {
	cfg := requestLogConfig{skip: map[string]bool{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		reqLogger := base.With(zap.String("method", c.Request.Method), zap.String("path", path))
		ctx := c.Request.Context()
		if id := c.GetString(RequestIDField); id != "" {
			ctx, reqLogger = WithRequestID(ctx, reqLogger, id)
		} else {
			ctx = WithContext(ctx, reqLogger)
		}
		c.Set(ginLoggerKey, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		if cfg.skip[path] && status < http.StatusInternalServerError {
			return
		}

		latency := time.Since(start)
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if route := c.FullPath(); route != "" && route != path {
			fields = append(fields, zap.String("route", route))
		}
		if c.Request.ContentLength > 0 {
			fields = append(fields, zap.Int64("request_bytes", c.Request.ContentLength))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn("HTTP Request", fields...)
		case cfg.slow > 0 && latency > cfg.slow:
			reqLogger.Warn("Slow HTTP Request", fields...)
		default:
			reqLogger.Info("HTTP Request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 in the API envelope and logs it with
// the stack
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				GetGinLoggerOr(c, base).Error("Panic recovered",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", rec),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "ERR_INTERNAL",
						"message": "An unexpected error occurred",
					},
				})
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request-scoped logger, or a no-op logger outside
// RequestLogger
func GetGinLogger(c *gin.Context) *zap.Logger {
	return GetGinLoggerOr(c, zap.NewNop())
}

// GetGinLoggerOr returns the request-scoped logger, or fallback
func GetGinLoggerOr(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return fallback
}
