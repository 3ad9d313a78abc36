package provision

import (
	"retention/dialersync/internal/app/domains/services/svprovision"
	"retention/dialersync/internal/app/pkg/logger"
)

// ProvisionHandler 坐席开通 HTTP 处理器
type ProvisionHandler struct {
	provisionService *svprovision.ProvisionService
	log              logger.Logger
}

// NewProvisionHandler 创建开通处理器实例
func NewProvisionHandler(provisionService *svprovision.ProvisionService, log logger.Logger) *ProvisionHandler {
	return &ProvisionHandler{
		provisionService: provisionService,
		log:              log,
	}
}
