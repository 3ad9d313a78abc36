package request

// AgentStatusRequest 提交通话处置
type AgentStatusRequest struct {
	AgentUser string `json:"agent_user" binding:"required" example:"ann_lee"`
	Status    string `json:"status" binding:"required" example:"SALE"`
}

// AgentPauseRequest 暂停/恢复坐席
type AgentPauseRequest struct {
	AgentUser string `json:"agent_user" binding:"required" example:"ann_lee"`
	Action    string `json:"action" binding:"required,oneof=PAUSE RESUME pause resume" example:"PAUSE"`
}

// AgentDialRequest 坐席外呼
type AgentDialRequest struct {
	AgentUser   string `json:"agent_user" binding:"required" example:"ann_lee"`
	PhoneNumber string `json:"phone_number" binding:"required" example:"5551234567"`
	PhoneCode   string `json:"phone_code" example:"1"`
}
