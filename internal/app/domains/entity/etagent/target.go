package etagent

// Kind 开通实体类型
type Kind string

const (
	KindCampaign Kind = "campaign"
	KindList     Kind = "list"
	KindUser     Kind = "user"
)

// CampaignTarget 活动（只校验存在，不通过 API 创建）
type CampaignTarget struct {
	CampaignID string
	Name       string
}

// ListTarget 名单
type ListTarget struct {
	ListID     string
	Name       string
	CampaignID string
}

// UserTarget 坐席账号
type UserTarget struct {
	ProfileID string
	Username  string
	Password  string
	FullName  string
	UserLevel int
	UserGroup string
}

// TargetDefaults 创建账号时的默认值
type TargetDefaults struct {
	Password  string
	UserLevel int
	UserGroup string
}

// Targets 由档案和映射生成三个开通目标
func Targets(p *Profile, m Mapping, d TargetDefaults) (CampaignTarget, ListTarget, UserTarget) {
	name := p.DisplayName
	if name == "" {
		name = m.Username
	}

	password := p.Password
	if password == "" {
		password = d.Password
	}
	level := p.UserLevel
	if level <= 0 {
		level = d.UserLevel
	}
	group := p.UserGroup
	if group == "" {
		group = d.UserGroup
	}

	return CampaignTarget{
			CampaignID: m.CampaignID,
			Name:       m.CampaignID,
		}, ListTarget{
			ListID:     m.ListID,
			Name:       name + " retention",
			CampaignID: m.CampaignID,
		}, UserTarget{
			ProfileID: p.ID,
			Username:  m.Username,
			Password:  password,
			FullName:  name,
			UserLevel: level,
			UserGroup: group,
		}
}
