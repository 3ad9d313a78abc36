package rpagent

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"retention/dialersync/internal/app/domains/entity/etagent"
	"retention/dialersync/internal/app/infra/persistence/mysql/model"
)

// AgentRepositoryImpl 坐席档案仓储实现（MySQL）
type AgentRepositoryImpl struct {
	db *gorm.DB
}

// NewAgentRepository 创建仓储实例
func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &AgentRepositoryImpl{db: db}
}

// ListActive 按创建时间排序，保证批量开通顺序稳定
func (r *AgentRepositoryImpl) ListActive(ctx context.Context) ([]*etagent.Profile, error) {
	var pos []model.AgentProfile
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&pos).Error; err != nil {
		return nil, err
	}

	profiles := make([]*etagent.Profile, 0, len(pos))
	for i := range pos {
		profiles = append(profiles, toDomain(&pos[i]))
	}
	return profiles, nil
}

func (r *AgentRepositoryImpl) GetByID(ctx context.Context, profileID string) (*etagent.Profile, error) {
	var po model.AgentProfile
	err := r.db.WithContext(ctx).Where("id = ?", profileID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(&po), nil
}

func (r *AgentRepositoryImpl) SaveMapping(ctx context.Context, profileID string, mapping etagent.Mapping) error {
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.AgentProfile{}).
		Where("id = ?", profileID).
		Updates(map[string]interface{}{
			"dialer_mapping": mappingJSON,
			"updated_at":     time.Now(),
		}).Error
}

func toDomain(po *model.AgentProfile) *etagent.Profile {
	return &etagent.Profile{
		ID:          po.ID,
		DisplayName: po.DisplayName,
		Email:       po.Email,
		Username:    po.DialerUsername,
		Password:    po.DialerPassword,
		CampaignID:  po.CampaignID,
		ListID:      po.ListID,
		UserLevel:   po.UserLevel,
		UserGroup:   po.UserGroup,
		Active:      po.Active,
	}
}
