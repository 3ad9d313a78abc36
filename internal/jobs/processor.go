package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bitleak/lmstfy/client"

	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/lmstfyx"
	"retention/dialersync/internal/app/pkg/logger"
)

// GetProcess 返回核心处理函数（注入到 Processor）
// 结果映射：成功 → Success；可重试错误且任务幂等 → Release；其余 → Bury
func GetProcess(log logger.Logger, svc LeadSyncer) lmstfyx.Proc {
	return func(ctx context.Context, lmstfyJob *client.Job) *lmstfyx.JobResp {
		startTime := time.Now()

		job, err := lmstfyx.ParseJob(lmstfyJob.Data)
		if err != nil {
			log.Errorf(ctx, "[GetProcess] parseJob failed: job_id=%s, error=%v", lmstfyJob.ID, err)
			return lmstfyx.Bury()
		}

		meta := job.Meta()
		ctx = logger.WithTraceID(ctx, meta.RequestID)
		ctx = logger.WithActionType(ctx, meta.ActionType)

		log.Infof(ctx, "[GetProcess] Processing job: action_type=%s, request_id=%s, id=%s",
			meta.ActionType, meta.RequestID, meta.ID)

		route, ok := HandlerMap[meta.ActionType]
		if !ok {
			log.Errorf(ctx, "[GetProcess] handler not found for action_type: %s", meta.ActionType)
			return lmstfyx.Bury()
		}

		resp := run(ctx, log, svc, route, job)

		log.Infof(ctx, "[GetProcess] Processing complete: action=%s, duration=%v", resp.Action, time.Since(startTime))
		return resp
	}
}

// run 调用 Handler（捕获 panic）
func run(ctx context.Context, log logger.Logger, svc LeadSyncer, route Route, job *lmstfyx.Job) (resp *lmstfyx.JobResp) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf(ctx, "[GetProcess] handler panic: %v", r)
			resp = lmstfyx.Bury()
		}
	}()

	out, err := route.Handle(ctx, svc, job)
	if err != nil {
		if errorx.IsRetryable(err) && route.Idempotent {
			log.Warnf(ctx, "[GetProcess] retryable failure, release for redelivery: %v", err)
			return lmstfyx.Release()
		}
		log.Errorf(ctx, "[GetProcess] job failed (%s): %v", errorx.KindOf(err), err)
		return lmstfyx.Bury()
	}

	data, err := json.Marshal(out)
	if err != nil {
		log.Errorf(ctx, "[GetProcess] marshal response failed: %v", err)
		return lmstfyx.Bury()
	}
	return lmstfyx.Success(data)
}
