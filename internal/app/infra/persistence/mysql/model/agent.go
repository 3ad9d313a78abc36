package model

import (
	"time"

	"gorm.io/datatypes"
)

// AgentProfile 坐席档案（看板库），DialerMapping 由开通流程回写
type AgentProfile struct {
	ID             string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	DisplayName    string         `gorm:"column:display_name;type:varchar(128)"`
	Email          string         `gorm:"column:email;type:varchar(255)"`
	DialerUsername string         `gorm:"column:dialer_username;type:varchar(64)"`
	DialerPassword string         `gorm:"column:dialer_password;type:varchar(100)"`
	CampaignID     string         `gorm:"column:campaign_id;type:varchar(64)"`
	ListID         string         `gorm:"column:list_id;type:varchar(64)"`
	UserLevel      int            `gorm:"column:user_level"`
	UserGroup      string         `gorm:"column:user_group;type:varchar(20)"`
	Active         bool           `gorm:"column:active;not null;default:true;index"`
	DialerMapping  datatypes.JSON `gorm:"column:dialer_mapping;type:json"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (AgentProfile) TableName() string {
	return "agent_profiles"
}

// LeadAssignment 线索分配记录（看板库，本服务只读）
type LeadAssignment struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	DealID         string    `gorm:"column:deal_id;type:varchar(64);index"`
	AgentProfileID string    `gorm:"column:agent_profile_id;type:varchar(64);index"`
	PhoneNumber    string    `gorm:"column:phone_number;type:varchar(32)"`
	ListID         string    `gorm:"column:list_id;type:varchar(64)"`
	CustomerName   string    `gorm:"column:customer_name;type:varchar(128)"`
	Status         string    `gorm:"column:status;type:varchar(16);not null;default:'active'"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (LeadAssignment) TableName() string {
	return "lead_assignments"
}
