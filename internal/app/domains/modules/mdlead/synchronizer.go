package mdlead

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"retention/dialersync/internal/app/domains/entity/etassignment"
	"retention/dialersync/internal/app/domains/entity/etlead"
	"retention/dialersync/internal/app/infra/dialer"
	"retention/dialersync/internal/app/infra/leadindex"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/logger"
)

// 平台函数名
const (
	fnAddLead        = "add_lead"
	fnUpdateLead     = "update_lead"
	fnSearchByPhone  = "lead_search"
	fnSearchByVendor = "lead_all_info"
)

// 线索来源
const (
	SourceIndex  = "index"
	SourceSearch = "search"
	SourceNone   = "none"
)

// 通知动作
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// DefaultChannelPrefix 通知频道前缀，完整频道为 lead:sync:{assignment_id}
const DefaultChannelPrefix = "lead:sync"

// Caller 非坐席 API 调用
type Caller interface {
	Call(ctx context.Context, function string, params dialer.Params) (*dialer.Result, error)
}

// Publisher 同步完成通知（Redis Pub/Sub）
type Publisher interface {
	Publish(ctx context.Context, channel string, message string) error
}

// Config 线索默认值
type Config struct {
	CampaignID    string
	ListID        string
	PhoneCode     string
	ChannelPrefix string
}

// SyncEvent 通知内容
type SyncEvent struct {
	Action       string    `json:"action"`
	AssignmentID string    `json:"assignment_id,omitempty"`
	LeadIDs      []int64   `json:"lead_ids"`
	At           time.Time `json:"at"`
}

// AddResult 新增线索结果
type AddResult struct {
	OK        bool           `json:"ok"`
	Duplicate bool           `json:"duplicate,omitempty"`
	LeadID    int64          `json:"lead_id,omitempty"`
	Result    *dialer.Result `json:"result,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// UnassignResult 移除线索结果
type UnassignResult struct {
	OK       bool     `json:"ok"`
	Matched  int      `json:"matched"`
	Deleted  int      `json:"deleted"`
	Source   string   `json:"source"`
	LeadIDs  []int64  `json:"lead_ids"`
	Evicted  []int64  `json:"evicted,omitempty"`
	Raw      string   `json:"raw,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Synchronizer 分配同步模块
// 职责：
// 1. 新增线索前查反向索引去重，成功后写入索引
// 2. 移除线索时优先按索引定位，索引缺失时回退到平台搜索
// 同一分配的新增须先于移除完成，由调用方保证顺序
type Synchronizer struct {
	caller    Caller
	index     leadindex.Index
	publisher Publisher // 可为 nil
	cfg       Config
	log       logger.Logger
	now       func() time.Time
}

// NewSynchronizer 创建同步模块
func NewSynchronizer(caller Caller, index leadindex.Index, publisher Publisher, cfg Config, log logger.Logger) *Synchronizer {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = DefaultChannelPrefix
	}
	return &Synchronizer{
		caller:    caller,
		index:     index,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Channel 分配对应的通知频道
func (s *Synchronizer) Channel(assignmentID string) string {
	return fmt.Sprintf("%s:%s", s.cfg.ChannelPrefix, assignmentID)
}

// AddLead 在平台上新增线索
// 返回 error 仅限参数错误与传输错误；平台拒绝体现在 AddResult.OK
func (s *Synchronizer) AddLead(ctx context.Context, record *etassignment.Assignment) (*AddResult, error) {
	phone := etlead.NormalizePhone(record.PhoneNumber)
	if phone == "" {
		return nil, errorx.InvalidInput("phone_number is required")
	}

	ids := record.Identifiers()
	ids.ListID = firstNonEmpty(ids.ListID, s.cfg.ListID)

	if existing := s.findExisting(ctx, ids); existing != nil {
		s.log.Infof(ctx, "[LeadSync] assignment %s already synced as lead %d", record.ID, existing.LeadID)
		return &AddResult{OK: true, Duplicate: true, LeadID: existing.LeadID}, nil
	}

	first, last := etlead.SplitName(record.CustomerName)
	params := dialer.Params{
		dialer.P("phone_number", phone),
		dialer.P("phone_code", firstNonEmpty(s.cfg.PhoneCode, "1")),
		dialer.P("list_id", ids.ListID),
		dialer.P("first_name", first),
		dialer.P("last_name", last),
		dialer.P("vendor_lead_code", record.DealID),
		dialer.P("source_id", record.ID),
	}
	if s.cfg.CampaignID != "" {
		params = params.With(dialer.P("campaign_id", s.cfg.CampaignID))
	}

	result, err := s.caller.Call(ctx, fnAddLead, params)
	if err != nil {
		return nil, err
	}

	out := &AddResult{Result: result}
	if !result.OK() {
		s.log.Warnf(ctx, "[LeadSync] add_lead rejected for assignment %s: %s", record.ID, strings.TrimSpace(result.RawBody))
		return out, nil
	}
	out.OK = true

	leadID, ok := dialer.ParseAddedLeadID(result.RawBody)
	if !ok {
		out.Warnings = append(out.Warnings, "lead id not found in add_lead response, index not updated")
		s.log.Warnf(ctx, "[LeadSync] %s", out.Warnings[len(out.Warnings)-1])
		return out, nil
	}
	out.LeadID = leadID

	entry, err := etlead.NewEntry(leadID, ids, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.index.Upsert(ctx, entry); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("index upsert failed: %v", err))
		s.log.Errorf(ctx, "[LeadSync] index upsert failed for lead %d: %v", leadID, err)
	}

	s.notify(ctx, ActionAdded, record.ID, []int64{leadID})
	return out, nil
}

// findExisting 只认 assignmentId 或组合键，弱信号不作为重复依据
func (s *Synchronizer) findExisting(ctx context.Context, ids etlead.Identifiers) *etlead.Entry {
	entry, err := s.index.Lookup(ctx, ids)
	if err != nil {
		s.log.Warnf(ctx, "[LeadSync] index lookup failed, treating as miss: %v", err)
		return nil
	}
	if entry == nil {
		return nil
	}

	if ids.AssignmentID != "" && entry.AssignmentID == strings.TrimSpace(ids.AssignmentID) {
		return entry
	}
	if key := ids.CompositeKey(); etlead.HasCompositeKey(key) && entry.CompositeKey() == key {
		return entry
	}
	return nil
}

// UnassignLead 从平台移除线索
// 索引只是缓存：按索引删除失败时回退到平台搜索，确认失效的索引条目会被剔除
func (s *Synchronizer) UnassignLead(ctx context.Context, ids etlead.Identifiers) (*UnassignResult, error) {
	if ids.Empty() {
		return nil, errorx.InvalidInput("at least one of assignment_id, deal_id, phone_number is required")
	}

	entry, err := s.index.Lookup(ctx, ids)
	if err != nil {
		s.log.Warnf(ctx, "[LeadSync] index lookup failed, falling back to search: %v", err)
		entry = nil
	}
	if entry != nil {
		return s.unassignIndexed(ctx, ids, entry), nil
	}

	candidates, warnings, _, err := s.search(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.log.Infof(ctx, "[LeadSync] no lead found for %+v, nothing to delete", ids)
		return &UnassignResult{OK: true, Source: SourceNone, LeadIDs: []int64{}, Warnings: warnings}, nil
	}

	out := &UnassignResult{
		Matched:  len(candidates),
		Source:   SourceSearch,
		LeadIDs:  []int64{},
		Warnings: warnings,
	}
	return s.finish(ctx, ids, out, s.deleteAll(ctx, out, candidates)), nil
}

// unassignIndexed 索引命中后的删除流程
func (s *Synchronizer) unassignIndexed(ctx context.Context, ids etlead.Identifiers, entry *etlead.Entry) *UnassignResult {
	raw, ok := s.deleteLead(ctx, entry.LeadID)
	if ok {
		out := &UnassignResult{Matched: 1, Deleted: 1, Source: SourceIndex, LeadIDs: []int64{entry.LeadID}}
		return s.finish(ctx, ids, out, nil)
	}
	s.log.Warnf(ctx, "[LeadSync] delete of indexed lead %d failed, searching platform: %s", entry.LeadID, raw)

	found, warnings, conclusive, err := s.search(ctx, mergeIdentifiers(ids, entry.Identifiers()))
	if err != nil {
		found = nil
	}
	// 搜索结论明确且不含该 id 时同样视为失效
	stale := dialer.IsNotFound(raw) || (conclusive && !containsID(found, entry.LeadID))

	out := &UnassignResult{Source: SourceIndex, LeadIDs: []int64{}, Warnings: warnings}
	var failures []string
	if stale {
		if _, err := s.index.Remove(ctx, entry.LeadID); err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("evict stale lead %d failed: %v", entry.LeadID, err))
			s.log.Errorf(ctx, "[LeadSync] evict stale lead %d failed: %v", entry.LeadID, err)
		} else {
			out.Evicted = append(out.Evicted, entry.LeadID)
			out.Warnings = append(out.Warnings, fmt.Sprintf("stale index entry for lead %d removed", entry.LeadID))
			s.log.Warnf(ctx, "[LeadSync] stale index entry for lead %d removed", entry.LeadID)
		}
	} else {
		out.Matched = 1
		failures = append(failures, fmt.Sprintf("lead %d: %s", entry.LeadID, raw))
	}

	var candidates []int64
	for _, id := range found {
		if id != entry.LeadID {
			candidates = append(candidates, id)
		}
	}

	if len(candidates) == 0 && stale {
		// 平台上已不存在，等同于未匹配
		out.OK = true
		out.Source = SourceNone
		s.log.Infof(ctx, "[LeadSync] indexed lead %d already gone from platform", entry.LeadID)
		return out
	}

	if len(candidates) > 0 {
		out.Source = SourceSearch
		out.Matched += len(candidates)
		failures = append(failures, s.deleteAll(ctx, out, candidates)...)
	}
	return s.finish(ctx, ids, out, failures)
}

// deleteAll 逐个删除候选，返回失败信息
func (s *Synchronizer) deleteAll(ctx context.Context, out *UnassignResult, candidates []int64) []string {
	var failures []string
	for _, id := range candidates {
		raw, ok := s.deleteLead(ctx, id)
		if !ok {
			failures = append(failures, fmt.Sprintf("lead %d: %s", id, raw))
			continue
		}
		out.Deleted++
		out.LeadIDs = append(out.LeadIDs, id)
	}
	return failures
}

// finish 汇总删除结果，清理索引并发送通知
func (s *Synchronizer) finish(ctx context.Context, ids etlead.Identifiers, out *UnassignResult, failures []string) *UnassignResult {
	if len(failures) > 0 {
		out.Raw = strings.Join(failures, "\n")
	}
	if out.Deleted == 0 {
		s.log.Errorf(ctx, "[LeadSync] all %d deletions failed: %s", out.Matched, out.Raw)
		return out
	}
	out.OK = true

	if _, err := s.index.Remove(ctx, out.LeadIDs...); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("index remove failed: %v", err))
		s.log.Errorf(ctx, "[LeadSync] index remove failed: %v", err)
	}

	s.notify(ctx, ActionRemoved, ids.AssignmentID, out.LeadIDs)
	return out
}

// search 按 vendor_lead_code 与电话分别搜索，合并去重
// conclusive 表示至少有一个策略，且每个策略都给出了成功或"未找到"的明确应答
// 全部策略都传输失败时返回错误
func (s *Synchronizer) search(ctx context.Context, ids etlead.Identifiers) ([]int64, []string, bool, error) {
	type strategy struct {
		function string
		params   dialer.Params
	}

	var strategies []strategy
	if dealID := strings.TrimSpace(ids.DealID); dealID != "" {
		strategies = append(strategies, strategy{fnSearchByVendor, dialer.Params{
			dialer.P("vendor_lead_code", dealID),
			dialer.P("header", "YES"),
		}})
	}
	if phone := etlead.NormalizePhone(ids.PhoneNumber); phone != "" {
		strategies = append(strategies, strategy{fnSearchByPhone, dialer.Params{
			dialer.P("phone_number", phone),
			dialer.P("records", 1000),
			dialer.P("header", "NO"),
		}})
	}

	var (
		seen       = map[int64]bool{}
		found      = []int64{}
		warnings   []string
		lastErr    error
		answered   int
		conclusive = len(strategies) > 0
	)
	for _, st := range strategies {
		result, err := s.caller.Call(ctx, st.function, st.params)
		if err != nil {
			lastErr = err
			conclusive = false
			warnings = append(warnings, fmt.Sprintf("%s: %v", st.function, err))
			s.log.Warnf(ctx, "[LeadSync] search %s failed: %v", st.function, err)
			continue
		}
		answered++
		if !result.OK() && !dialer.IsNotFound(result.RawBody) {
			conclusive = false
		}
		leadIDs := result.LeadIDs()
		if len(leadIDs) == 0 && result.OK() && strings.Contains(result.RawBody, "|") {
			conclusive = false
			warnings = append(warnings, fmt.Sprintf("%s: no lead_id recognized in response rows", st.function))
			s.log.Warnf(ctx, "[LeadSync] search %s returned rows without a recognizable lead_id: %s", st.function, strings.TrimSpace(result.RawBody))
		}
		for _, id := range leadIDs {
			if !seen[id] {
				seen[id] = true
				found = append(found, id)
			}
		}
	}

	if answered == 0 && lastErr != nil {
		return nil, warnings, false, lastErr
	}
	return found, warnings, conclusive, nil
}

// deleteLead 按 lead_id 删除；返回原始信息与是否成功
func (s *Synchronizer) deleteLead(ctx context.Context, leadID int64) (string, bool) {
	result, err := s.caller.Call(ctx, fnUpdateLead, dialer.Params{
		dialer.P("lead_id", leadID),
		dialer.P("delete_lead", "Y"),
	})
	if err != nil {
		return err.Error(), false
	}
	raw := strings.TrimSpace(result.RawBody)
	if dialer.IsFailure(raw) {
		return raw, false
	}
	return raw, true
}

func (s *Synchronizer) notify(ctx context.Context, action, assignmentID string, leadIDs []int64) {
	if s.publisher == nil || assignmentID == "" {
		return
	}

	payload, err := json.Marshal(SyncEvent{Action: action, AssignmentID: assignmentID, LeadIDs: leadIDs, At: s.now()})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.Channel(assignmentID), string(payload)); err != nil {
		s.log.Warnf(ctx, "[LeadSync] publish %s notification failed: %v", action, err)
	}
}

// Index 反向索引（运维查看）
func (s *Synchronizer) Index() leadindex.Index {
	return s.index
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// mergeIdentifiers 请求未带的字段用索引条目补齐
func mergeIdentifiers(ids, fromIndex etlead.Identifiers) etlead.Identifiers {
	return etlead.Identifiers{
		AssignmentID:   firstNonEmpty(ids.AssignmentID, fromIndex.AssignmentID),
		DealID:         firstNonEmpty(ids.DealID, fromIndex.DealID),
		PhoneNumber:    firstNonEmpty(ids.PhoneNumber, fromIndex.PhoneNumber),
		ListID:         firstNonEmpty(ids.ListID, fromIndex.ListID),
		AgentProfileID: firstNonEmpty(ids.AgentProfileID, fromIndex.AgentProfileID),
	}
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
