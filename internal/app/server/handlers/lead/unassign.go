package lead

import (
	"github.com/gin-gonic/gin"

	"retention/dialersync/internal/app/domains/apimodel/request"
	"retention/dialersync/internal/app/domains/services/svlead"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/ginx"
)

// Unassign 移除线索
// POST /api/v1/leads/unassign?async=1
// 没有匹配到任何线索视为成功（matched=0）
func (h *LeadHandler) Unassign(c *gin.Context) {
	var req request.UnassignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	if isAsync(c) {
		jobID, err := h.leadService.EnqueueUnassign(ctx, req.ToIdentifiers())
		if err != nil {
			h.log.Errorf(ctx, "[LeadHandler] enqueue unassign failed: %v", err)
			ginx.FromError(c, err, nil)
			return
		}
		ginx.Accepted(c, jobID, svlead.ActionLeadUnassign)
		return
	}

	res, err := h.leadService.UnassignLead(ctx, req.ToIdentifiers())
	if err != nil {
		h.log.Errorf(ctx, "[LeadHandler] unassign lead failed: %v", err)
		ginx.FromError(c, err, nil)
		return
	}
	if !res.OK {
		ginx.FromError(c, errorx.Rejected("update_lead", res.Raw), res)
		return
	}

	ginx.Success(c, res)
}
