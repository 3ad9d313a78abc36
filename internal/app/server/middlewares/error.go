package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retention/dialersync/internal/app/pkg/ginx"
	"retention/dialersync/internal/app/pkg/logger"
)

// ErrorHandler 统一错误处理中间件
// 捕获 panic 并输出统一响应；handler 通过 c.Error 挂载但未写响应的错误按 500 返回
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[HTTP] panic: %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				c.Abort()
				ginx.InternalError(c, "internal server error")
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			log.Errorf(c.Request.Context(), "[HTTP] unhandled error: %v", err.Err)
			ginx.Error(c, http.StatusInternalServerError, err.Error())
		}
	}
}
