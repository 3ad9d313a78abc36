package request

// AddLeadRequest 新增线索请求
// 只给 assignment_id 时从行存储补全其余字段
type AddLeadRequest struct {
	AssignmentID   string `json:"assignment_id" binding:"required" example:"9b2f6a1e-0c1d-4a55-9d1e-3f1b7c2a0e11"`
	DealID         string `json:"deal_id" example:"D-1042"`
	AgentProfileID string `json:"agent_profile_id" example:"1cda9534-ffb8-4b8e-9d3e-2f0a6a7c1b55"`
	PhoneNumber    string `json:"phone_number" example:"+1 (555) 123-4567"`
	ListID         string `json:"list_id" example:"101"`
	CustomerName   string `json:"customer_name" example:"Jane Roe"`
}

// UnassignLeadRequest 移除线索请求，至少给出一个标识
type UnassignLeadRequest struct {
	AssignmentID   string `json:"assignment_id" binding:"required_without_all=DealID PhoneNumber"`
	DealID         string `json:"deal_id"`
	PhoneNumber    string `json:"phone_number"`
	ListID         string `json:"list_id"`
	AgentProfileID string `json:"agent_profile_id"`
}

// LeadSearchQuery 线索查询参数
type LeadSearchQuery struct {
	PhoneNumber    string `form:"phone_number" binding:"required_without=VendorLeadCode"`
	VendorLeadCode string `form:"vendor_lead_code"`
}

// HopperQuery 待拨队列查询参数
type HopperQuery struct {
	CampaignID string `form:"campaign_id" binding:"required"`
}
