package leadindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"retention/dialersync/internal/app/domains/entity/etlead"
	"retention/dialersync/internal/app/pkg/errorx"
	"retention/dialersync/internal/app/pkg/logger"
)

// document 索引文件格式
type document struct {
	Entries []etlead.Entry `json:"entries"`
}

// FileStore 单个 JSON 文件的索引实现
// 每次读取全量文件，每次修改全量重写（临时文件 + rename）
// mu 只能串行化本进程内的写入，多进程同时写仍会互相覆盖
type FileStore struct {
	path string
	log  logger.Logger
	mu   sync.Mutex
}

// NewFileStore 创建文件索引
func NewFileStore(path string, log logger.Logger) *FileStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &FileStore{path: path, log: log}
}

// Path 索引文件路径
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Lookup(ctx context.Context, ids etlead.Identifiers) (*etlead.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lookup(s.load(ctx), ids), nil
}

func (s *FileStore) Get(ctx context.Context, leadID int64) (*etlead.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.load(ctx) {
		if e.LeadID == leadID {
			out := e
			return &out, nil
		}
	}
	return nil, nil
}

func (s *FileStore) Upsert(ctx context.Context, entry *etlead.Entry) error {
	if entry == nil || entry.LeadID <= 0 {
		return etlead.ErrInvalidLeadID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, upsert(s.load(ctx), *entry))
}

func (s *FileStore) Remove(ctx context.Context, leadIDs ...int64) (int, error) {
	if len(leadIDs) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, removed := remove(s.load(ctx), leadIDs)
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(ctx, entries); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *FileStore) List(ctx context.Context) ([]etlead.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx), nil
}

func (s *FileStore) Close() error {
	return nil
}

// load 读取索引；文件不存在视为空，无法解析时告警后视为空
func (s *FileStore) load(ctx context.Context) []etlead.Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warnf(ctx, "[LeadIndex] %v", errorx.IndexCorrupted(s.path, err))
		}
		return []etlead.Entry{}
	}
	if len(data) == 0 {
		return []etlead.Entry{}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		// 兼容直接存数组的旧文件
		var entries []etlead.Entry
		if errArr := json.Unmarshal(data, &entries); errArr != nil {
			s.log.Warnf(ctx, "[LeadIndex] %v, treating as empty", errorx.IndexCorrupted(s.path, err))
			return []etlead.Entry{}
		}
		doc.Entries = entries
	}

	valid := doc.Entries[:0]
	for _, e := range doc.Entries {
		if e.LeadID > 0 {
			valid = append(valid, e)
		}
	}
	return valid
}

// save 原子重写；只读文件系统上记录告警并跳过
func (s *FileStore) save(ctx context.Context, entries []etlead.Entry) error {
	if entries == nil {
		entries = []etlead.Entry{}
	}
	data, err := json.MarshalIndent(document{Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lead index failed: %w", err)
	}

	if err := s.writeAtomic(data); err != nil {
		if isReadOnly(err) {
			s.log.Warnf(ctx, "[LeadIndex] filesystem not writable, skip persisting %s: %v", s.path, err)
			return nil
		}
		return fmt.Errorf("write lead index failed: %w", err)
	}
	return nil
}

func (s *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func isReadOnly(err error) bool {
	return errors.Is(err, syscall.EROFS) || errors.Is(err, fs.ErrPermission)
}
