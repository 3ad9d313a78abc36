package etassignment

import "retention/dialersync/internal/app/domains/entity/etlead"

// 分配状态（由看板侧维护，这里只读）
const (
	StatusActive     = "active"
	StatusUnassigned = "unassigned"
)

// Assignment 线索分配记录
type Assignment struct {
	ID             string
	DealID         string
	AgentProfileID string
	PhoneNumber    string
	ListID         string
	CustomerName   string
	Status         string
}

// Identifiers 转换为索引标识
func (a *Assignment) Identifiers() etlead.Identifiers {
	return etlead.Identifiers{
		AssignmentID:   a.ID,
		DealID:         a.DealID,
		PhoneNumber:    a.PhoneNumber,
		ListID:         a.ListID,
		AgentProfileID: a.AgentProfileID,
	}
}
