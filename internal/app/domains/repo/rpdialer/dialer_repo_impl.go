package rpdialer

import (
	"context"
	"time"

	"gorm.io/gorm"

	"retention/dialersync/internal/app/domains/entity/etagent"
	"retention/dialersync/internal/app/infra/persistence/mysql/model"
)

// DialerRepositoryImpl 外呼平台库实现（MySQL）
type DialerRepositoryImpl struct {
	db *gorm.DB
}

// NewDialerRepository 创建仓储实例
func NewDialerRepository(db *gorm.DB) DialerRepository {
	return &DialerRepositoryImpl{db: db}
}

func (r *DialerRepositoryImpl) CampaignExists(ctx context.Context, campaignID string) (bool, error) {
	return r.exists(ctx, &model.Campaign{}, "campaign_id = ?", campaignID)
}

func (r *DialerRepositoryImpl) ListExists(ctx context.Context, listID string) (bool, error) {
	return r.exists(ctx, &model.List{}, "list_id = ?", listID)
}

// InsertList 插入名单，描述为空、状态启用
func (r *DialerRepositoryImpl) InsertList(ctx context.Context, target etagent.ListTarget) error {
	po := &model.List{
		ListID:         target.ListID,
		ListName:       target.Name,
		CampaignID:     target.CampaignID,
		Active:         model.FlagYes,
		ListChangeDate: time.Now(),
	}
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *DialerRepositoryImpl) UserExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, &model.User{}, "user = ?", username)
}

// InsertUser 插入坐席账号
func (r *DialerRepositoryImpl) InsertUser(ctx context.Context, target etagent.UserTarget) error {
	po := &model.User{
		User:      target.Username,
		Pass:      target.Password,
		FullName:  target.FullName,
		UserLevel: target.UserLevel,
		UserGroup: target.UserGroup,
		Active:    model.FlagYes,
	}
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *DialerRepositoryImpl) exists(ctx context.Context, po interface{}, query string, arg string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(po).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
