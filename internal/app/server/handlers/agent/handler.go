package agent

import (
	"github.com/gin-gonic/gin"

	"retention/dialersync/internal/app/domains/apimodel/response"
	"retention/dialersync/internal/app/domains/services/svagent"
	"retention/dialersync/internal/app/infra/dialer"
	"retention/dialersync/internal/app/pkg/ginx"
	"retention/dialersync/internal/app/pkg/logger"
)

// AgentHandler 坐席操作与平台查询透传
type AgentHandler struct {
	agentService *svagent.AgentService
	log          logger.Logger
}

// NewAgentHandler 创建坐席处理器实例
func NewAgentHandler(agentService *svagent.AgentService, log logger.Logger) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
		log:          log,
	}
}

// reply 平台返回一律 200 透传 {ok, status, raw, parsed}；只有调用本身失败才返回错误
func (h *AgentHandler) reply(c *gin.Context, op string, res *dialer.Result, err error, build func(*dialer.Result) *response.DialerResponse) {
	if err != nil {
		h.log.Errorf(c.Request.Context(), "[AgentHandler] %s failed: %v", op, err)
		ginx.FromError(c, err, nil)
		return
	}
	ginx.Success(c, build(res))
}
