package rpagent

import (
	"context"

	"retention/dialersync/internal/app/domains/entity/etagent"
)

// AgentRepository 坐席档案仓储接口
type AgentRepository interface {
	// ListActive 查询全部启用的坐席
	ListActive(ctx context.Context) ([]*etagent.Profile, error)

	// GetByID 根据ID查询，不存在返回 nil, nil
	GetByID(ctx context.Context, profileID string) (*etagent.Profile, error)

	// SaveMapping 回写平台映射
	SaveMapping(ctx context.Context, profileID string, mapping etagent.Mapping) error
}
