package routers

import (
	"github.com/gin-gonic/gin"

	"retention/dialersync/internal/app/pkg/logger"
	"retention/dialersync/internal/app/server/handlers/agent"
	"retention/dialersync/internal/app/server/handlers/lead"
	"retention/dialersync/internal/app/server/handlers/provision"
	"retention/dialersync/internal/app/server/middlewares"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(
	log logger.Logger,
	leadHandler *lead.LeadHandler,
	agentHandler *agent.AgentHandler,
	provisionHandler *provision.ProvisionHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.RequestID())
	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "dialersync",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		leads := v1.Group("/leads")
		{
			leads.POST("", leadHandler.Add)
			leads.POST("/unassign", leadHandler.Unassign)
			leads.GET("", agentHandler.Leads)
		}
		v1.GET("/lead-index", leadHandler.Index)

		agents := v1.Group("/agents")
		{
			agents.POST("/status", agentHandler.Status)
			agents.POST("/pause", agentHandler.Pause)
			agents.POST("/dial", agentHandler.Dial)
		}
		v1.GET("/hopper", agentHandler.Hopper)

		provisioning := v1.Group("/provisioning")
		{
			provisioning.POST("/users", provisionHandler.EnsureUser)
			provisioning.POST("/run", provisionHandler.Run)
		}
	}

	return r
}
