package leadindex

import (
	"context"
	"fmt"
	"strings"

	"retention/dialersync/internal/app/domains/entity/etlead"
	"retention/dialersync/internal/app/pkg/logger"
)

// 存储驱动
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Index 线索反向索引：内部分配记录 → 平台 lead_id
// 索引只是缓存，平台才是事实来源
type Index interface {
	// Lookup 按 assignmentId → 组合键 → dealId → 电话 的优先级查找
	Lookup(ctx context.Context, ids etlead.Identifiers) (*etlead.Entry, error)
	// Get 按平台 lead_id 查找
	Get(ctx context.Context, leadID int64) (*etlead.Entry, error)
	// Upsert 写入条目，同 lead_id / 组合键 / assignmentId 的旧条目被替换
	Upsert(ctx context.Context, entry *etlead.Entry) error
	// Remove 删除条目，返回实际删除数
	Remove(ctx context.Context, leadIDs ...int64) (int, error)
	List(ctx context.Context) ([]etlead.Entry, error)
	Close() error
}

// New 按驱动创建索引
func New(driver, path string, log logger.Logger) (Index, error) {
	switch strings.ToLower(driver) {
	case "", DriverFile:
		return NewFileStore(path, log), nil
	case DriverSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown lead index driver %q", driver)
	}
}

// lookup 在内存条目中按优先级查找；弱匹配命中多条时取最近更新的
func lookup(entries []etlead.Entry, ids etlead.Identifiers) *etlead.Entry {
	if assignmentID := strings.TrimSpace(ids.AssignmentID); assignmentID != "" {
		if e := latest(entries, func(e *etlead.Entry) bool { return e.AssignmentID == assignmentID }); e != nil {
			return e
		}
	}

	if key := ids.CompositeKey(); etlead.HasCompositeKey(key) {
		if e := latest(entries, func(e *etlead.Entry) bool { return e.CompositeKey() == key }); e != nil {
			return e
		}
	}

	if dealID := strings.ToLower(strings.TrimSpace(ids.DealID)); dealID != "" {
		if e := latest(entries, func(e *etlead.Entry) bool { return strings.ToLower(e.DealID) == dealID }); e != nil {
			return e
		}
	}

	if phone := etlead.NormalizePhone(ids.PhoneNumber); phone != "" {
		if e := latest(entries, func(e *etlead.Entry) bool { return etlead.NormalizePhone(e.PhoneNumber) == phone }); e != nil {
			return e
		}
	}

	return nil
}

func latest(entries []etlead.Entry, match func(*etlead.Entry) bool) *etlead.Entry {
	var found *etlead.Entry
	for i := range entries {
		e := &entries[i]
		if !match(e) {
			continue
		}
		if found == nil || !e.UpdatedAt.Before(found.UpdatedAt) {
			found = e
		}
	}
	if found == nil {
		return nil
	}
	out := *found
	return &out
}

// upsert 去掉冲突条目后追加（后写覆盖）
func upsert(entries []etlead.Entry, entry etlead.Entry) []etlead.Entry {
	key := entry.CompositeKey()
	hasKey := etlead.HasCompositeKey(key)

	kept := entries[:0:0]
	for _, e := range entries {
		if e.LeadID == entry.LeadID {
			continue
		}
		if entry.AssignmentID != "" && e.AssignmentID == entry.AssignmentID {
			continue
		}
		if hasKey && e.CompositeKey() == key {
			continue
		}
		kept = append(kept, e)
	}
	return append(kept, entry)
}

func remove(entries []etlead.Entry, leadIDs []int64) ([]etlead.Entry, int) {
	drop := make(map[int64]struct{}, len(leadIDs))
	for _, id := range leadIDs {
		drop[id] = struct{}{}
	}

	kept := entries[:0:0]
	for _, e := range entries {
		if _, ok := drop[e.LeadID]; ok {
			continue
		}
		kept = append(kept, e)
	}
	return kept, len(entries) - len(kept)
}
