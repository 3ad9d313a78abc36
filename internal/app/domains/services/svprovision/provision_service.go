package svprovision

import (
	"context"
	"fmt"

	"retention/dialersync/internal/app/domains/entity/etagent"
	"retention/dialersync/internal/app/domains/modules/mdprovision"
	"retention/dialersync/internal/app/domains/repo/rpagent"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/logger"
)

// ProvisionService 坐席开通服务，负责读取档案、调用引擎、回写映射
type ProvisionService struct {
	engine *mdprovision.Engine
	agents rpagent.AgentRepository // 可为 nil
	log    logger.Logger
}

// NewProvisionService 创建开通服务实例
func NewProvisionService(engine *mdprovision.Engine, agents rpagent.AgentRepository, log logger.Logger) *ProvisionService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ProvisionService{engine: engine, agents: agents, log: log}
}

// EnsureAgent 开通单个坐席（档案由调用方提供）
func (s *ProvisionService) EnsureAgent(ctx context.Context, profile *etagent.Profile) (*mdprovision.AgentReport, error) {
	if err := profile.Validate(); err != nil {
		return nil, errorx.InvalidInput(err.Error())
	}

	report := s.engine.ProvisionAgent(ctx, profile)
	s.saveMapping(ctx, report)
	return report, nil
}

// EnsureAgentByID 按档案 ID 从行存储读取后开通
func (s *ProvisionService) EnsureAgentByID(ctx context.Context, profileID string) (*mdprovision.AgentReport, error) {
	if s.agents == nil {
		return nil, errorx.ConfigMissing("mysql.dsn")
	}

	profile, err := s.agents.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load agent profile failed: %w", err)
	}
	if profile == nil {
		return nil, errorx.NotFound(fmt.Sprintf("agent profile %s not found", profileID))
	}
	return s.EnsureAgent(ctx, profile)
}

// RunBatch 批量开通
// profiles 为空时读取行存储中全部启用的坐席
// 部分坐席失败不返回 error，由 BatchReport.Err() 体现
func (s *ProvisionService) RunBatch(ctx context.Context, profiles []*etagent.Profile) (*mdprovision.BatchReport, error) {
	if len(profiles) == 0 {
		if s.agents == nil {
			return nil, errorx.ConfigMissing("mysql.dsn")
		}
		loaded, err := s.agents.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("list active agents failed: %w", err)
		}
		profiles = loaded
	}

	s.log.Infof(ctx, "[ProvisionService] provisioning %d agents", len(profiles))
	batch := s.engine.Run(ctx, profiles)
	for _, report := range batch.Agents {
		s.saveMapping(ctx, report)
	}
	return batch, nil
}

// saveMapping 回写映射；失败只记入报告告警
func (s *ProvisionService) saveMapping(ctx context.Context, report *mdprovision.AgentReport) {
	if s.agents == nil || report.Mapping.Username == "" {
		return
	}
	if err := s.agents.SaveMapping(ctx, report.ProfileID, report.Mapping); err != nil {
		msg := fmt.Sprintf("save mapping failed: %v", err)
		report.Warnings = append(report.Warnings, msg)
		s.log.Warnf(logger.WithAgent(ctx, report.ProfileID), "[ProvisionService] %s", msg)
	}
}
