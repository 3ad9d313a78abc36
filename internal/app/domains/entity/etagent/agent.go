package etagent

import (
	"errors"
	"strings"
)

// 错误定义
var (
	ErrInvalidProfileID = errors.New("agent profile id cannot be empty")
)

// 外呼平台账号约束
const (
	MinUsernameLen   = 3
	MaxUsernameLen   = 20
	MinExternalIDLen = 2
	MaxExternalIDLen = 8

	campaignPrefix = "cmp"
	listPrefix     = "lst"
	userPrefix     = "agent_"
)

// Profile 坐席档案（来自看板数据源）
type Profile struct {
	ID          string
	DisplayName string
	Email       string
	Username    string // 期望的平台用户名（原始值，未规整）
	Password    string
	CampaignID  string // 原始值，未规整
	ListID      string // 原始值，未规整
	UserLevel   int
	UserGroup   string
	Active      bool
}

// Validate 校验必填字段
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrInvalidProfileID
	}
	return nil
}

// Mapping 坐席在平台上的标识映射（幂等重跑必须收敛到相同结果）
type Mapping struct {
	Username   string `json:"username"`
	CampaignID string `json:"campaign_id"`
	ListID     string `json:"list_id"`
}

// MappingDefaults 档案缺省时使用的默认值
type MappingDefaults struct {
	CampaignID string
	ListID     string
}

// BuildMapping 由档案计算映射，纯函数
func BuildMapping(p *Profile, defaults MappingDefaults) Mapping {
	rawUser := p.Username
	if strings.TrimSpace(rawUser) == "" {
		rawUser = emailLocalPart(p.Email)
	}
	if strings.TrimSpace(rawUser) == "" {
		rawUser = p.DisplayName
	}

	rawCampaign := firstNonEmpty(p.CampaignID, defaults.CampaignID)
	rawList := firstNonEmpty(p.ListID, defaults.ListID)

	return Mapping{
		Username:   NormalizeUsername(rawUser, p.ID),
		CampaignID: NormalizeCampaignID(rawCampaign, p.ID),
		ListID:     NormalizeListID(rawList, p.ID),
	}
}

// NormalizeUsername 小写，非 [a-z0-9_] 折叠为下划线；不足 3 位时使用由档案 ID 派生的兜底值
func NormalizeUsername(raw, profileID string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	name := strings.Trim(b.String(), "_")
	if len(name) > MaxUsernameLen {
		name = strings.TrimRight(name[:MaxUsernameLen], "_")
	}
	if len(name) >= MinUsernameLen {
		return name
	}

	return userPrefix + padRight(compactID(profileID), 8)
}

// NormalizeCampaignID 小写字母数字，长度 2-8；否则为 3 位前缀 + 档案 ID 的 5 位片段
func NormalizeCampaignID(raw, profileID string) string {
	return normalizeExternalID(raw, profileID, campaignPrefix)
}

// NormalizeListID 规则同 NormalizeCampaignID
func NormalizeListID(raw, profileID string) string {
	return normalizeExternalID(raw, profileID, listPrefix)
}

func normalizeExternalID(raw, profileID, defaultPrefix string) string {
	id := alnumLower(raw)
	if len(id) >= MinExternalIDLen && len(id) <= MaxExternalIDLen {
		return id
	}

	prefix := defaultPrefix
	if len(id) >= 3 {
		prefix = id[:3]
	}
	return prefix + padRight(compactID(profileID), 5)[:5]
}

// compactID 档案 ID 的小写字母数字部分
func compactID(profileID string) string {
	return alnumLower(profileID)
}

func alnumLower(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// padRight 截断或以 0 补齐到 n 位
func padRight(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat("0", n-len(s))
}

func emailLocalPart(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
