package svlead

import (
	"context"
	"fmt"
	"strings"

	"retention/dialersync/internal/app/domains/entity/etassignment"
	"retention/dialersync/internal/app/domains/entity/etlead"
	"retention/dialersync/internal/app/domains/modules/mdlead"
	"retention/dialersync/internal/app/domains/repo/rpassignment"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/lmstfyx"
	"retention/dialersync/internal/app/pkg/logger"
)

// 队列任务类型
const (
	ActionLeadAdd      = "lead_add"
	ActionLeadUnassign = "lead_unassign"
)

// JobPublisher 任务发布端（lmstfy）
type JobPublisher interface {
	Publish(ctx context.Context, queue string, job *lmstfyx.Job) (string, error)
}

// AddLeadCommand 新增线索指令（HTTP 与队列共用）
type AddLeadCommand struct {
	AssignmentID   string `json:"assignment_id"`
	DealID         string `json:"deal_id,omitempty"`
	AgentProfileID string `json:"agent_profile_id,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	ListID         string `json:"list_id,omitempty"`
	CustomerName   string `json:"customer_name,omitempty"`
}

// Assignment 转换为分配记录
func (c AddLeadCommand) Assignment() *etassignment.Assignment {
	return &etassignment.Assignment{
		ID:             strings.TrimSpace(c.AssignmentID),
		DealID:         c.DealID,
		AgentProfileID: c.AgentProfileID,
		PhoneNumber:    c.PhoneNumber,
		ListID:         c.ListID,
		CustomerName:   c.CustomerName,
	}
}

// LeadService 线索同步服务
type LeadService struct {
	sync        *mdlead.Synchronizer
	assignments rpassignment.AssignmentRepository // 可为 nil
	publisher   JobPublisher                      // 可为 nil
	queue       string
	log         logger.Logger
}

// NewLeadService 创建线索同步服务
func NewLeadService(
	sync *mdlead.Synchronizer,
	assignments rpassignment.AssignmentRepository,
	publisher JobPublisher,
	queue string,
	log logger.Logger,
) *LeadService {
	if log == nil {
		log = logger.NewNop()
	}
	return &LeadService{
		sync:        sync,
		assignments: assignments,
		publisher:   publisher,
		queue:       queue,
		log:         log,
	}
}

// AddLead 同步新增线索
// 只给了 assignment_id 时从行存储补全分配记录
func (s *LeadService) AddLead(ctx context.Context, cmd AddLeadCommand) (*mdlead.AddResult, error) {
	record, err := s.resolveAssignment(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return s.sync.AddLead(ctx, record)
}

// UnassignLead 同步移除线索
func (s *LeadService) UnassignLead(ctx context.Context, ids etlead.Identifiers) (*mdlead.UnassignResult, error) {
	ids = s.resolveIdentifiers(ctx, ids)
	return s.sync.UnassignLead(ctx, ids)
}

// EnqueueAdd 新增线索入队，返回 job_id
func (s *LeadService) EnqueueAdd(ctx context.Context, cmd AddLeadCommand) (string, error) {
	if strings.TrimSpace(cmd.AssignmentID) == "" {
		return "", errorx.InvalidInput("assignment_id is required")
	}
	return s.enqueue(ctx, ActionLeadAdd, cmd.AssignmentID, cmd)
}

// EnqueueUnassign 移除线索入队，返回 job_id
func (s *LeadService) EnqueueUnassign(ctx context.Context, ids etlead.Identifiers) (string, error) {
	if ids.Empty() {
		return "", errorx.InvalidInput("at least one of assignment_id, deal_id, phone_number is required")
	}
	return s.enqueue(ctx, ActionLeadUnassign, ids.AssignmentID, ids)
}

// ListIndex 导出反向索引
func (s *LeadService) ListIndex(ctx context.Context) ([]etlead.Entry, error) {
	return s.sync.Index().List(ctx)
}

func (s *LeadService) enqueue(ctx context.Context, action, id string, payload interface{}) (string, error) {
	if s.publisher == nil || s.queue == "" {
		return "", errorx.ConfigMissing("lmstfy.host")
	}

	job, err := lmstfyx.NewJob(logger.TraceID(ctx), action, id, payload)
	if err != nil {
		return "", err
	}

	jobID, err := s.publisher.Publish(ctx, s.queue, job)
	if err != nil {
		return "", errorx.Transport("lmstfy publish", err)
	}

	s.log.Infof(ctx, "[LeadService] enqueued %s: id=%s, job_id=%s", action, id, jobID)
	return jobID, nil
}

// resolveAssignment 电话缺失时按 assignment_id 从行存储加载
func (s *LeadService) resolveAssignment(ctx context.Context, cmd AddLeadCommand) (*etassignment.Assignment, error) {
	record := cmd.Assignment()
	if strings.TrimSpace(record.PhoneNumber) != "" || s.assignments == nil || record.ID == "" {
		return record, nil
	}

	stored, err := s.assignments.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("load assignment failed: %w", err)
	}
	if stored == nil {
		return nil, errorx.NotFound(fmt.Sprintf("assignment %s not found", record.ID))
	}

	merge(stored, record)
	return stored, nil
}

// resolveIdentifiers 只有 assignment_id 时补全其余标识，供搜索回退使用
// 行存储不可用不影响移除流程
func (s *LeadService) resolveIdentifiers(ctx context.Context, ids etlead.Identifiers) etlead.Identifiers {
	if s.assignments == nil || ids.AssignmentID == "" || ids.DealID != "" || ids.PhoneNumber != "" {
		return ids
	}

	stored, err := s.assignments.GetByID(ctx, ids.AssignmentID)
	if err != nil {
		s.log.Warnf(ctx, "[LeadService] load assignment %s failed: %v", ids.AssignmentID, err)
		return ids
	}
	if stored == nil {
		return ids
	}

	full := stored.Identifiers()
	if ids.ListID != "" {
		full.ListID = ids.ListID
	}
	if ids.AgentProfileID != "" {
		full.AgentProfileID = ids.AgentProfileID
	}
	return full
}

// merge 请求中显式给出的字段覆盖行存储的值
func merge(dst, src *etassignment.Assignment) {
	if src.DealID != "" {
		dst.DealID = src.DealID
	}
	if src.AgentProfileID != "" {
		dst.AgentProfileID = src.AgentProfileID
	}
	if src.ListID != "" {
		dst.ListID = src.ListID
	}
	if src.CustomerName != "" {
		dst.CustomerName = src.CustomerName
	}
}
