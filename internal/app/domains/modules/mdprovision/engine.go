package mdprovision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"retention/dialersync/internal/app/domains/entity/etagent"
	"retention/dialersync/internal/app/domains/repo/rpdialer"
	"retention/dialersync/internal/app/infra/dialer"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/logger"
)

// 平台函数名
const (
	fnAddList = "add_list"
	fnAddUser = "add_user"
)

// Caller 非坐席 API 调用
type Caller interface {
	Call(ctx context.Context, function string, params dialer.Params) (*dialer.Result, error)
}

// Config 开通默认值
type Config struct {
	Mapping etagent.MappingDefaults
	Targets etagent.TargetDefaults
}

// Engine 开通引擎
// 职责：
// 1. 按坐席依次确认活动、名单、账号存在
// 2. 账号创建按方言顺序尝试，全部失败时走行存储兜底
// 每个实体相互隔离，单个失败只记入报告，不中断批量
type Engine struct {
	caller Caller
	repo   rpdialer.DialerRepository // 可为 nil
	cfg    Config
	log    logger.Logger
}

// NewEngine 创建开通引擎；repo 为 nil 表示没有行存储
func NewEngine(caller Caller, repo rpdialer.DialerRepository, cfg Config, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{caller: caller, repo: repo, cfg: cfg, log: log}
}

// HasRowStore 是否配置了行存储
func (e *Engine) HasRowStore() bool {
	return e.repo != nil
}

// EnsureCampaign 活动不通过 API 创建，只做存在性检查
// 无法校验时记录告警并视为成功
func (e *Engine) EnsureCampaign(ctx context.Context, target etagent.CampaignTarget) EntityResult {
	res := EntityResult{Kind: etagent.KindCampaign, ID: target.CampaignID}

	if e.repo == nil {
		res.OK = true
		res.Via = ViaUnverified
		res.warn("campaign %s not verified: no row store configured", target.CampaignID)
		return res
	}

	exists, err := e.repo.CampaignExists(ctx, target.CampaignID)
	if err != nil {
		res.OK = true
		res.Via = ViaUnverified
		res.warn("campaign %s not verified: %v", target.CampaignID, err)
		return res
	}
	if !exists {
		res.warn("campaign %s does not exist, create it in the dialer console", target.CampaignID)
		return res
	}

	res.OK = true
	res.Via = ViaExists
	return res
}

// EnsureList 调用一次 add_list；失败时用行存储检查并补插
func (e *Engine) EnsureList(ctx context.Context, target etagent.ListTarget) EntityResult {
	res := EntityResult{Kind: etagent.KindList, ID: target.ListID}

	result, err := e.caller.Call(ctx, fnAddList, dialer.Params{
		dialer.P("list_id", target.ListID),
		dialer.P("list_name", target.Name),
		dialer.P("campaign_id", target.CampaignID),
		dialer.P("active", "Y"),
		dialer.P("list_description", ""),
	})

	var reason string
	switch {
	case err != nil:
		reason = err.Error()
	case result.OK():
		res.OK = true
		res.Via = ViaAPI
		if result.Outcome() == dialer.OutcomeIdempotentExists {
			res.Via = ViaExists
		}
		return res
	default:
		reason = strings.TrimSpace(result.RawBody)
	}

	if e.repo == nil {
		res.warn("list %s: add_list failed and no row store configured", target.ListID)
		res.Error = reason
		return res
	}

	exists, err := e.repo.ListExists(ctx, target.ListID)
	if err != nil {
		res.Error = fmt.Sprintf("%s; row store lookup failed: %v", reason, err)
		return res
	}
	if !exists {
		if err := e.repo.InsertList(ctx, target); err != nil {
			res.Error = fmt.Sprintf("%s; row store insert failed: %v", reason, err)
			return res
		}
	}

	res.OK = true
	res.Via = ViaRowStore
	res.warn("list %s: add_list rejected (%s), ensured through row store", target.ListID, reason)
	return res
}

// EnsureUser 依次尝试各方言，首个成功或已存在即返回
// 传输错误立即停止：无法确认上一次请求是否已创建账号
func (e *Engine) EnsureUser(ctx context.Context, target etagent.UserTarget) EntityResult {
	res := EntityResult{Kind: etagent.KindUser, ID: target.Username}

	attempts := make([]string, 0, len(UserDialects))
	for _, d := range UserDialects {
		result, err := e.caller.Call(ctx, fnAddUser, d.Build(target))
		if err != nil {
			res.Error = fmt.Sprintf("dialect %s: %v", d.Name, err)
			return res
		}

		if result.OK() {
			res.OK = true
			res.Via = ViaAPI
			res.Dialect = d.Name
			if result.Outcome() == dialer.OutcomeIdempotentExists {
				res.Via = ViaExists
			}
			return res
		}

		attempts = append(attempts, fmt.Sprintf("[%s] %s", d.Name, strings.TrimSpace(result.RawBody)))
		e.log.Debugf(ctx, "[Provision] add_user dialect %s rejected for %s", d.Name, target.Username)
	}

	joined := strings.Join(attempts, " | ")
	if e.repo == nil {
		res.Error = errorx.Rejected(fnAddUser, joined).Error()
		return res
	}

	exists, err := e.repo.UserExists(ctx, target.Username)
	if err != nil {
		res.Error = fmt.Sprintf("%s; row store lookup failed: %v", joined, err)
		return res
	}
	if !exists {
		if err := e.repo.InsertUser(ctx, target); err != nil {
			res.Error = fmt.Sprintf("%s; row store insert failed: %v", joined, err)
			return res
		}
	}

	res.OK = true
	res.Via = ViaRowStore
	res.warn("user %s: all add_user dialects rejected, ensured through row store", target.Username)
	return res
}

// ProvisionAgent 依次确认单个坐席的活动、名单、账号
func (e *Engine) ProvisionAgent(ctx context.Context, profile *etagent.Profile) *AgentReport {
	report := &AgentReport{ProfileID: profile.ID, Warnings: []string{}, Errors: []string{}}
	if err := profile.Validate(); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	ctx = logger.WithAgent(ctx, profile.ID)
	report.Mapping = etagent.BuildMapping(profile, e.cfg.Mapping)
	campaign, list, user := etagent.Targets(profile, report.Mapping, e.cfg.Targets)

	c := e.EnsureCampaign(ctx, campaign)
	report.Created.Campaign = c.OK
	report.absorb(c)

	l := e.EnsureList(ctx, list)
	report.Created.List = l.OK
	report.absorb(l)

	u := e.EnsureUser(ctx, user)
	report.Created.User = u.OK
	report.absorb(u)

	for _, w := range report.Warnings {
		e.log.Warnf(ctx, "[Provision] %s", w)
	}
	for _, msg := range report.Errors {
		e.log.Errorf(ctx, "[Provision] %s", msg)
	}
	return report
}

// Run 严格顺序处理每个坐席，总会跑完整个批次
func (e *Engine) Run(ctx context.Context, profiles []*etagent.Profile) *BatchReport {
	batch := &BatchReport{Agents: make([]*AgentReport, 0, len(profiles)), Total: len(profiles)}

	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			report := &AgentReport{ProfileID: p.ID, Warnings: []string{}, Errors: []string{err.Error()}}
			batch.Agents = append(batch.Agents, report)
			batch.Failed++
			continue
		}

		report := e.ProvisionAgent(ctx, p)
		batch.Agents = append(batch.Agents, report)
		if !report.OK() {
			batch.Failed++
		}
		e.log.Infof(ctx, "[Provision] %s", report.StatusLine())
	}

	if errors.Is(batch.Err(), errorx.ErrPartialBatchFailure) {
		e.log.Warnf(ctx, "[Provision] %v", batch.Err())
	}
	return batch
}
