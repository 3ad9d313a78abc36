package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"retention/dialersync/internal/app/pkg/logger"
)

// Logger 访问日志
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.Errorf(ctx, "[HTTP] %s %s %d %v", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		case status >= 400:
			log.Warnf(ctx, "[HTTP] %s %s %d %v", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		default:
			log.Infof(ctx, "[HTTP] %s %s %d %v", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		}
	}
}
