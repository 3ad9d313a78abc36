package jobs

import (
	"context"
	"fmt"
	"strings"

	"retention/dialersync/internal/app/domains/entity/etlead"
	"retention/dialersync/internal/app/domains/modules/mdlead"
	"retention/dialersync/internal/app/domains/services/svlead"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/lmstfyx"
)

// LeadSyncer 任务处理依赖的线索同步能力
type LeadSyncer interface {
	AddLead(ctx context.Context, cmd svlead.AddLeadCommand) (*mdlead.AddResult, error)
	UnassignLead(ctx context.Context, ids etlead.Identifiers) (*mdlead.UnassignResult, error)
}

// Handler 单类任务的处理函数，返回值序列化后作为处理结果
type Handler func(ctx context.Context, svc LeadSyncer, job *lmstfyx.Job) (interface{}, error)

// Route 路由项
// Idempotent 为 true 时传输错误可重投；新增线索重投可能重复建档，不重投
type Route struct {
	Handle     Handler
	Idempotent bool
}

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]Route{
	svlead.ActionLeadAdd:      {Handle: handleLeadAdd},
	svlead.ActionLeadUnassign: {Handle: handleLeadUnassign, Idempotent: true},
}

func handleLeadAdd(ctx context.Context, svc LeadSyncer, job *lmstfyx.Job) (interface{}, error) {
	var cmd svlead.AddLeadCommand
	if err := job.Decode(&cmd); err != nil {
		return nil, errorx.InvalidInput(fmt.Sprintf("decode lead_add payload: %v", err))
	}

	res, err := svc.AddLead(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		raw := ""
		if res.Result != nil {
			raw = strings.TrimSpace(res.Result.RawBody)
		}
		return res, errorx.Rejected(svlead.ActionLeadAdd, raw)
	}
	return res, nil
}

func handleLeadUnassign(ctx context.Context, svc LeadSyncer, job *lmstfyx.Job) (interface{}, error) {
	var ids etlead.Identifiers
	if err := job.Decode(&ids); err != nil {
		return nil, errorx.InvalidInput(fmt.Sprintf("decode lead_unassign payload: %v", err))
	}

	res, err := svc.UnassignLead(ctx, ids)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return res, errorx.Rejected(svlead.ActionLeadUnassign, res.Raw)
	}
	return res, nil
}
