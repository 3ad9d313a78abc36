package lead

import (
	"strings"

	"github.com/gin-gonic/gin"

	"retention/dialersync/internal/app/domains/apimodel/request"
	"retention/dialersync/internal/app/domains/services/svlead"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/ginx"
)

// Add 新增线索
// POST /api/v1/leads?async=1
// 同步模式直接调用平台；async=1 时入队由 worker 执行，返回 202
func (h *LeadHandler) Add(c *gin.Context) {
	var req request.AddLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	if isAsync(c) {
		jobID, err := h.leadService.EnqueueAdd(ctx, req.ToCommand())
		if err != nil {
			h.log.Errorf(ctx, "[LeadHandler] enqueue add failed: %v", err)
			ginx.FromError(c, err, nil)
			return
		}
		ginx.Accepted(c, jobID, svlead.ActionLeadAdd)
		return
	}

	res, err := h.leadService.AddLead(ctx, req.ToCommand())
	if err != nil {
		h.log.Errorf(ctx, "[LeadHandler] add lead failed: %v", err)
		ginx.FromError(c, err, nil)
		return
	}
	if !res.OK {
		raw := ""
		if res.Result != nil {
			raw = strings.TrimSpace(res.Result.RawBody)
		}
		ginx.FromError(c, errorx.Rejected("add_lead", raw), res)
		return
	}

	ginx.Success(c, res)
}

func isAsync(c *gin.Context) bool {
	v := c.Query("async")
	return v == "1" || strings.EqualFold(v, "true")
}
