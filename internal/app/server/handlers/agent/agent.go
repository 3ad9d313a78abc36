package agent

import (
	"github.com/gin-gonic/gin"

	"retention/dialersync/internal/app/domains/apimodel/request"
	"retention/dialersync/internal/app/domains/apimodel/response"
	"retention/dialersync/internal/app/pkg/ginx"
)

// Status 提交通话处置
// POST /api/v1/agents/status
func (h *AgentHandler) Status(c *gin.Context) {
	var req request.AgentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	res, err := h.agentService.SetStatus(c.Request.Context(), req.AgentUser, req.Status)
	h.reply(c, "external_status", res, err, response.FromDialerResult)
}

// Pause 暂停/恢复坐席
// POST /api/v1/agents/pause
func (h *AgentHandler) Pause(c *gin.Context) {
	var req request.AgentPauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	res, err := h.agentService.Pause(c.Request.Context(), req.AgentUser, req.Action)
	h.reply(c, "external_pause", res, err, response.FromDialerResult)
}

// Dial 坐席外呼
// POST /api/v1/agents/dial
func (h *AgentHandler) Dial(c *gin.Context) {
	var req request.AgentDialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	res, err := h.agentService.Dial(c.Request.Context(), req.AgentUser, req.PhoneNumber, req.PhoneCode)
	h.reply(c, "external_dial", res, err, response.FromDialerResult)
}

// Hopper 待拨队列
// GET /api/v1/hopper?campaign_id=
func (h *AgentHandler) Hopper(c *gin.Context) {
	var q request.HopperQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	res, err := h.agentService.HopperList(c.Request.Context(), q.CampaignID)
	h.reply(c, "hopper_list", res, err, response.FromDialerResult)
}

// Leads 线索查询
// GET /api/v1/leads?phone_number=|vendor_lead_code=
func (h *AgentHandler) Leads(c *gin.Context) {
	var q request.LeadSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	res, err := h.agentService.SearchLeads(c.Request.Context(), q.PhoneNumber, q.VendorLeadCode)
	h.reply(c, "lead_search", res, err, response.FromLeadSearch)
}
