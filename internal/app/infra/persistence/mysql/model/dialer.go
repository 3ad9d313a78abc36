package model

import "time"

// Campaign 外呼平台活动表（只读，活动须在平台控制台手工创建）
type Campaign struct {
	CampaignID   string `gorm:"column:campaign_id;primaryKey;type:varchar(8)"`
	CampaignName string `gorm:"column:campaign_name;type:varchar(40)"`
	Active       string `gorm:"column:active;type:varchar(1);default:'Y'"`
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "vicidial_campaigns"
}

// List 外呼平台名单表
type List struct {
	ListID          string    `gorm:"column:list_id;primaryKey;type:varchar(8)"`
	ListName        string    `gorm:"column:list_name;type:varchar(30)"`
	CampaignID      string    `gorm:"column:campaign_id;type:varchar(8);index"`
	Active          string    `gorm:"column:active;type:varchar(1);default:'Y'"`
	ListDescription string    `gorm:"column:list_description;type:varchar(255)"`
	ListChangeDate  time.Time `gorm:"column:list_changedate"`
}

// TableName 指定表名
func (List) TableName() string {
	return "vicidial_lists"
}

// User 外呼平台坐席账号表
type User struct {
	UserID    int64  `gorm:"column:user_id;primaryKey;autoIncrement"`
	User      string `gorm:"column:user;type:varchar(20);uniqueIndex"`
	Pass      string `gorm:"column:pass;type:varchar(100)"`
	FullName  string `gorm:"column:full_name;type:varchar(50)"`
	UserLevel int    `gorm:"column:user_level;default:1"`
	UserGroup string `gorm:"column:user_group;type:varchar(20)"`
	Active    string `gorm:"column:active;type:varchar(1);default:'Y'"`
}

// TableName 指定表名
func (User) TableName() string {
	return "vicidial_users"
}

// 平台布尔值
const (
	FlagYes = "Y"
	FlagNo  = "N"
)
