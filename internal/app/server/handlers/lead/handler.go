package lead

import (
	"retention/dialersync/internal/app/domains/services/svlead"
	"retention/dialersync/internal/app/pkg/logger"
)

// LeadHandler 线索同步 HTTP 处理器
type LeadHandler struct {
	leadService *svlead.LeadService
	log         logger.Logger
}

// NewLeadHandler 创建线索处理器实例
func NewLeadHandler(leadService *svlead.LeadService, log logger.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		log:         log,
	}
}
