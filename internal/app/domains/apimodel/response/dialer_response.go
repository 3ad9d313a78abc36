package response

import (
	"retention/dialersync/internal/app/domains/entity/etlead"
	"retention/dialersync/internal/app/infra/dialer"
)

// DialerResponse 平台调用透传结果（DTO）
type DialerResponse struct {
	OK      bool              `json:"ok"`
	Outcome string            `json:"outcome"`
	Status  int               `json:"status"`
	Raw     string            `json:"raw"`
	Parsed  map[string]string `json:"parsed"`
	LeadIDs []int64           `json:"lead_ids,omitempty"`
}

// FromDialerResult 由平台结果构造 DTO
func FromDialerResult(r *dialer.Result) *DialerResponse {
	parsed := r.ParsedFields
	if parsed == nil {
		parsed = map[string]string{}
	}
	return &DialerResponse{
		OK:      r.OK(),
		Outcome: r.Outcome().String(),
		Status:  r.HTTPStatus,
		Raw:     r.RawBody,
		Parsed:  parsed,
	}
}

// FromLeadSearch 线索查询结果附带解析出的 lead_id
func FromLeadSearch(r *dialer.Result) *DialerResponse {
	resp := FromDialerResult(r)
	resp.LeadIDs = r.LeadIDs()
	return resp
}

// LeadIndexResponse 反向索引导出
type LeadIndexResponse struct {
	Total   int            `json:"total"`
	Entries []etlead.Entry `json:"entries"`
}

// FromLeadIndex 构造索引导出 DTO
func FromLeadIndex(entries []etlead.Entry) *LeadIndexResponse {
	if entries == nil {
		entries = []etlead.Entry{}
	}
	return &LeadIndexResponse{Total: len(entries), Entries: entries}
}
