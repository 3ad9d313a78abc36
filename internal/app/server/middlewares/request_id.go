package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"retention/dialersync/internal/app/pkg/logger"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// RequestID 透传或生成请求 ID，并作为 trace_id 注入请求 Context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}

		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
