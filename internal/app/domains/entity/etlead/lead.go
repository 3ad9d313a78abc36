package etlead

import (
	"errors"
	"strings"
	"time"
)

// 错误定义
var (
	ErrInvalidLeadID = errors.New("lead id must be a positive integer")
)

// Identifiers 定位一条线索所用的内部标识（均可为空）
type Identifiers struct {
	AssignmentID   string `json:"assignment_id,omitempty"`
	DealID         string `json:"deal_id,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	ListID         string `json:"list_id,omitempty"`
	AgentProfileID string `json:"agent_profile_id,omitempty"`
}

// CompositeKey 组合键
func (i Identifiers) CompositeKey() string {
	return CompositeKey(i.DealID, i.PhoneNumber, i.ListID, i.AgentProfileID)
}

// Empty 所有标识都为空
func (i Identifiers) Empty() bool {
	return strings.TrimSpace(i.AssignmentID) == "" && !HasCompositeKey(i.CompositeKey())
}

// Entry 反向索引条目：内部分配记录 → 平台 lead_id
// 字段名与历史索引文件保持一致
type Entry struct {
	LeadID         int64     `json:"externalLeadId"`
	AssignmentID   string    `json:"assignmentId,omitempty"`
	DealID         string    `json:"dealId,omitempty"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	ListID         string    `json:"listId,omitempty"`
	AgentProfileID string    `json:"agentProfileId,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewEntry 创建索引条目（工厂方法），电话号码统一规整
func NewEntry(leadID int64, ids Identifiers, now time.Time) (*Entry, error) {
	if leadID <= 0 {
		return nil, ErrInvalidLeadID
	}
	return &Entry{
		LeadID:         leadID,
		AssignmentID:   strings.TrimSpace(ids.AssignmentID),
		DealID:         strings.TrimSpace(ids.DealID),
		PhoneNumber:    NormalizePhone(ids.PhoneNumber),
		ListID:         strings.TrimSpace(ids.ListID),
		AgentProfileID: strings.TrimSpace(ids.AgentProfileID),
		UpdatedAt:      now,
	}, nil
}

// CompositeKey 条目的组合键
func (e *Entry) CompositeKey() string {
	return CompositeKey(e.DealID, e.PhoneNumber, e.ListID, e.AgentProfileID)
}

// Identifiers 条目对应的内部标识
func (e *Entry) Identifiers() Identifiers {
	return Identifiers{
		AssignmentID:   e.AssignmentID,
		DealID:         e.DealID,
		PhoneNumber:    e.PhoneNumber,
		ListID:         e.ListID,
		AgentProfileID: e.AgentProfileID,
	}
}

const emptyCompositeKey = "|||"

// CompositeKey normalized(dealId)|normalizedPhone(phone)|normalized(listId)|normalized(agentProfileId)
func CompositeKey(dealID, phone, listID, agentProfileID string) string {
	return strings.Join([]string{
		normalizeKeyPart(dealID),
		NormalizePhone(phone),
		normalizeKeyPart(listID),
		normalizeKeyPart(agentProfileID),
	}, "|")
}

// HasCompositeKey 组合键是否非空
func HasCompositeKey(key string) bool {
	return key != "" && key != emptyCompositeKey
}

func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone 仅保留数字；以国家码 1 开头的 11 位号码取后 10 位
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		return digits[1:]
	}
	return digits
}

// SplitName 拆分显示名为 first/last，多余部分并入 last
func SplitName(display string) (string, string) {
	parts := strings.Fields(display)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
