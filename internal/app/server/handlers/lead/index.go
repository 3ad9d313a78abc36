package lead

import (
	"github.com/gin-gonic/gin"

	"retention/dialersync/internal/app/domains/apimodel/response"
	"retention/dialersync/internal/app/pkg/ginx"
)

// Index 导出反向索引
// GET /api/v1/lead-index
func (h *LeadHandler) Index(c *gin.Context) {
	entries, err := h.leadService.ListIndex(c.Request.Context())
	if err != nil {
		ginx.FromError(c, err, nil)
		return
	}
	ginx.Success(c, response.FromLeadIndex(entries))
}
