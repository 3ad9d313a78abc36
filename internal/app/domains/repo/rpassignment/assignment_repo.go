package rpassignment

import (
	"context"

	"retention/dialersync/internal/app/domains/entity/etassignment"
)

// AssignmentRepository 线索分配记录（只读）
type AssignmentRepository interface {
	// GetByID 不存在返回 nil, nil
	GetByID(ctx context.Context, assignmentID string) (*etassignment.Assignment, error)
}
