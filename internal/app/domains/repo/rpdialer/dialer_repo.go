package rpdialer

import (
	"context"

	"retention/dialersync/internal/app/domains/entity/etagent"
)

// DialerRepository 外呼平台库的直连访问（可选协作方，部分部署没有）
// 只用于 API 开通失败后的兜底
type DialerRepository interface {
	// CampaignExists 活动是否存在
	CampaignExists(ctx context.Context, campaignID string) (bool, error)

	// ListExists 名单是否存在
	ListExists(ctx context.Context, listID string) (bool, error)

	// InsertList 以默认值插入名单（启用、描述为空）
	InsertList(ctx context.Context, target etagent.ListTarget) error

	// UserExists 坐席账号是否存在
	UserExists(ctx context.Context, username string) (bool, error)

	// InsertUser 插入坐席账号
	InsertUser(ctx context.Context, target etagent.UserTarget) error
}
