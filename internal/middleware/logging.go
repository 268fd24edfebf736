package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkdirlove/song-server/pkg/httputil"
	"github.com/mkdirlove/song-server/pkg/logger"
)

// Logging writes one structured entry per request. 4xx log as warnings and
// 5xx as errors so failures stand out at the default level.
func Logging(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []logger.Field{
			logger.String("request_id", httputil.GetRequestID(c)),
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", status),
			logger.String("ip", c.ClientIP()),
			logger.Int64("latency_ms", time.Since(start).Milliseconds()),
		}
		if user, ok := CurrentUser(c); ok {
			fields = append(fields, logger.String("username", user.Username))
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}
