package rpassignment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"retention/dialersync/internal/app/domains/entity/etassignment"
	"retention/dialersync/internal/app/infra/persistence/mysql/model"
)

// AssignmentRepositoryImpl 分配记录仓储实现（MySQL）
type AssignmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAssignmentRepository 创建仓储实例
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &AssignmentRepositoryImpl{db: db}
}

func (r *AssignmentRepositoryImpl) GetByID(ctx context.Context, assignmentID string) (*etassignment.Assignment, error) {
	var po model.LeadAssignment
	err := r.db.WithContext(ctx).Where("id = ?", assignmentID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &etassignment.Assignment{
		ID:             po.ID,
		DealID:         po.DealID,
		AgentProfileID: po.AgentProfileID,
		PhoneNumber:    po.PhoneNumber,
		ListID:         po.ListID,
		CustomerName:   po.CustomerName,
		Status:         po.Status,
	}, nil
}
