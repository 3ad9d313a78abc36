package provision

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"retention/dialersync/internal/app/domains/apimodel/request"
	"retention/dialersync/internal/app/domains/modules/mdprovision"
	"retention/dialersync/internal/app/pkg/ginx"
)

// EnsureUser 开通单个坐席
// POST /api/v1/provisioning/users
func (h *ProvisionHandler) EnsureUser(c *gin.Context) {
	var req request.EnsureUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		report *mdprovision.AgentReport
		err    error
	)
	if req.Profile != nil {
		report, err = h.provisionService.EnsureAgent(ctx, req.Profile.ToProfile())
	} else {
		report, err = h.provisionService.EnsureAgentByID(ctx, req.ProfileID)
	}
	if err != nil {
		h.log.Errorf(ctx, "[ProvisionHandler] ensure user failed: %v", err)
		ginx.FromError(c, err, nil)
		return
	}

	h.log.Infof(ctx, "[ProvisionHandler] %s", report.StatusLine())
	ginx.Success(c, report)
}

// Run 批量开通；部分失败仍返回 200，失败明细在报告中
// POST /api/v1/provisioning/run
func (h *ProvisionHandler) Run(c *gin.Context) {
	var req request.RunProvisioningRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	batch, err := h.provisionService.RunBatch(ctx, req.ToProfiles())
	if err != nil {
		h.log.Errorf(ctx, "[ProvisionHandler] run batch failed: %v", err)
		ginx.FromError(c, err, nil)
		return
	}

	ginx.Success(c, batch)
}
