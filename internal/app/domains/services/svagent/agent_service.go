package svagent

import (
	"context"
	"strings"

	"retention/dialersync/internal/app/domains/entity/etlead"
	"retention/dialersync/internal/app/infra/dialer"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/logger"
)

// 平台函数名
const (
	fnExternalStatus = "external_status"
	fnExternalPause  = "external_pause"
	fnExternalDial   = "external_dial"
	fnHopperList     = "hopper_list"
	fnLeadSearch     = "lead_search"
	fnLeadAllInfo    = "lead_all_info"
)

// 暂停动作
const (
	PauseActionPause  = "PAUSE"
	PauseActionResume = "RESUME"
)

// Caller 外呼平台调用（non-agent 与 agent 两类接口）
type Caller interface {
	Call(ctx context.Context, function string, params dialer.Params) (*dialer.Result, error)
	CallAgent(ctx context.Context, function string, params dialer.Params) (*dialer.Result, error)
}

// AgentService 坐席操作与查询透传
// 平台返回原样交给调用方，这里只做参数规整
type AgentService struct {
	caller    Caller
	phoneCode string
	log       logger.Logger
}

// NewAgentService 创建透传服务
func NewAgentService(caller Caller, phoneCode string, log logger.Logger) *AgentService {
	if log == nil {
		log = logger.NewNop()
	}
	if phoneCode == "" {
		phoneCode = "1"
	}
	return &AgentService{caller: caller, phoneCode: phoneCode, log: log}
}

// SetStatus 提交通话处置结果
func (s *AgentService) SetStatus(ctx context.Context, agentUser, status string) (*dialer.Result, error) {
	if agentUser == "" || status == "" {
		return nil, errorx.InvalidInput("agent_user and status are required")
	}
	return s.caller.CallAgent(ctx, fnExternalStatus, dialer.Params{
		dialer.P("agent_user", agentUser),
		dialer.P("value", strings.ToUpper(status)),
	})
}

// Pause 暂停或恢复坐席
func (s *AgentService) Pause(ctx context.Context, agentUser, action string) (*dialer.Result, error) {
	action = strings.ToUpper(strings.TrimSpace(action))
	if action != PauseActionPause && action != PauseActionResume {
		return nil, errorx.InvalidInput("action must be PAUSE or RESUME")
	}
	if agentUser == "" {
		return nil, errorx.InvalidInput("agent_user is required")
	}
	return s.caller.CallAgent(ctx, fnExternalPause, dialer.Params{
		dialer.P("agent_user", agentUser),
		dialer.P("value", action),
	})
}

// Dial 让坐席外呼指定号码
func (s *AgentService) Dial(ctx context.Context, agentUser, phone, phoneCode string) (*dialer.Result, error) {
	digits := etlead.NormalizePhone(phone)
	if agentUser == "" || digits == "" {
		return nil, errorx.InvalidInput("agent_user and phone_number are required")
	}
	if phoneCode == "" {
		phoneCode = s.phoneCode
	}

	s.log.Infof(ctx, "[AgentService] dial: agent=%s, phone=%s", agentUser, digits)
	return s.caller.CallAgent(ctx, fnExternalDial, dialer.Params{
		dialer.P("agent_user", agentUser),
		dialer.P("value", digits),
		dialer.P("phone_code", phoneCode),
		dialer.P("search", "YES"),
		dialer.P("preview", "NO"),
		dialer.P("focus", "YES"),
	})
}

// HopperList 查询活动的待拨队列
func (s *AgentService) HopperList(ctx context.Context, campaignID string) (*dialer.Result, error) {
	if campaignID == "" {
		return nil, errorx.InvalidInput("campaign_id is required")
	}
	return s.caller.Call(ctx, fnHopperList, dialer.Params{
		dialer.P("campaign_id", campaignID),
		dialer.P("header", "YES"),
	})
}

// SearchLeads 按电话或 vendor_lead_code 查询线索；两者都给时优先 vendor_lead_code
func (s *AgentService) SearchLeads(ctx context.Context, phone, vendorLeadCode string) (*dialer.Result, error) {
	if code := strings.TrimSpace(vendorLeadCode); code != "" {
		return s.caller.Call(ctx, fnLeadAllInfo, dialer.Params{
			dialer.P("vendor_lead_code", code),
			dialer.P("header", "YES"),
		})
	}

	digits := etlead.NormalizePhone(phone)
	if digits == "" {
		return nil, errorx.InvalidInput("phone_number or vendor_lead_code is required")
	}
	return s.caller.Call(ctx, fnLeadSearch, dialer.Params{
		dialer.P("phone_number", digits),
		dialer.P("records", 1000),
		dialer.P("header", "YES"),
	})
}
