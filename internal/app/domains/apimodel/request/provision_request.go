package request

// AgentProfileRequest 坐席档案（HTTP 请求与 --agents 文件共用）
type AgentProfileRequest struct {
	ID          string `json:"id" binding:"required" example:"1cda9534-ffb8-4b8e-9d3e-2f0a6a7c1b55"`
	DisplayName string `json:"display_name" example:"Ann Lee"`
	Email       string `json:"email" example:"ann.lee@example.com"`
	Username    string `json:"username" example:"ann_lee"`
	Password    string `json:"password"`
	CampaignID  string `json:"campaign_id" example:"retain"`
	ListID      string `json:"list_id" example:"101"`
	UserLevel   int    `json:"user_level" binding:"omitempty,min=1,max=9" example:"1"`
	UserGroup   string `json:"user_group" example:"AGENTS"`
}

// EnsureUserRequest 开通单个坐席：给 profile_id 从行存储读取，或直接给档案
type EnsureUserRequest struct {
	ProfileID string               `json:"profile_id" binding:"required_without=Profile"`
	Profile   *AgentProfileRequest `json:"profile"`
}

// RunProvisioningRequest 批量开通；agents 为空时使用行存储中全部启用坐席
type RunProvisioningRequest struct {
	Agents []*AgentProfileRequest `json:"agents" binding:"omitempty,dive"`
}
