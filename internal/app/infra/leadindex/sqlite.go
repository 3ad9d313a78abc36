package leadindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"retention/dialersync/internal/app/domains/entity/etlead"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS lead_index (
	lead_id          INTEGER PRIMARY KEY,
	assignment_id    TEXT,
	composite_key    TEXT,
	deal_id          TEXT NOT NULL DEFAULT '',
	phone_number     TEXT NOT NULL DEFAULT '',
	list_id          TEXT NOT NULL DEFAULT '',
	agent_profile_id TEXT NOT NULL DEFAULT '',
	updated_at       DATETIME NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_lead_index_assignment ON lead_index(assignment_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_lead_index_composite ON lead_index(composite_key);
CREATE INDEX IF NOT EXISTS idx_lead_index_deal ON lead_index(deal_id);
CREATE INDEX IF NOT EXISTS idx_lead_index_phone ON lead_index(phone_number);
`

const selectColumns = `lead_id, assignment_id, deal_id, phone_number, list_id, agent_profile_id, updated_at`

// SQLiteStore 键控存储实现，每次 upsert 在单个事务内完成
// 唯一索引保证 assignmentId 与组合键各自至多一条
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore 打开或创建 SQLite 索引
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open lead index: %w", err)
	}
	// 单连接，避免 :memory: 每个连接各自一份库
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, ids etlead.Identifiers) (*etlead.Entry, error) {
	type probe struct {
		where string
		arg   string
	}

	var probes []probe
	if v := strings.TrimSpace(ids.AssignmentID); v != "" {
		probes = append(probes, probe{"assignment_id = ?", v})
	}
	if key := ids.CompositeKey(); etlead.HasCompositeKey(key) {
		probes = append(probes, probe{"composite_key = ?", key})
	}
	if v := strings.ToLower(strings.TrimSpace(ids.DealID)); v != "" {
		probes = append(probes, probe{"lower(deal_id) = ?", v})
	}
	if v := etlead.NormalizePhone(ids.PhoneNumber); v != "" {
		probes = append(probes, probe{"phone_number = ?", v})
	}

	for _, p := range probes {
		query := "SELECT " + selectColumns + " FROM lead_index WHERE " + p.where + " ORDER BY updated_at DESC LIMIT 1"
		entry, err := scanEntry(s.db.QueryRowContext(ctx, query, p.arg))
		if err != nil {
			return nil, err
		}
		if entry != nil {
			return entry, nil
		}
	}
	return nil, nil
}

func (s *SQLiteStore) Get(ctx context.Context, leadID int64) (*etlead.Entry, error) {
	return scanEntry(s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM lead_index WHERE lead_id = ?", leadID))
}

func (s *SQLiteStore) Upsert(ctx context.Context, entry *etlead.Entry) error {
	if entry == nil || entry.LeadID <= 0 {
		return etlead.ErrInvalidLeadID
	}

	assignmentID := nullable(entry.AssignmentID)
	compositeKey := sql.NullString{}
	if key := entry.CompositeKey(); etlead.HasCompositeKey(key) {
		compositeKey = sql.NullString{String: key, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert failed: %w", err)
	}
	defer tx.Rollback()

	// NULL 参数不会匹配任何行
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM lead_index WHERE lead_id = ? OR assignment_id = ? OR composite_key = ?`,
		entry.LeadID, assignmentID, compositeKey); err != nil {
		return fmt.Errorf("delete superseded entries failed: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lead_index (lead_id, assignment_id, composite_key, deal_id, phone_number, list_id, agent_profile_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.LeadID, assignmentID, compositeKey,
		entry.DealID, etlead.NormalizePhone(entry.PhoneNumber), entry.ListID, entry.AgentProfileID,
		entry.UpdatedAt.UTC()); err != nil {
		return fmt.Errorf("insert entry failed: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) Remove(ctx context.Context, leadIDs ...int64) (int, error) {
	if len(leadIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(leadIDs)), ",")
	args := make([]interface{}, len(leadIDs))
	for i, id := range leadIDs {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM lead_index WHERE lead_id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("remove entries failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]etlead.Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM lead_index ORDER BY updated_at ASC, lead_id ASC")
	if err != nil {
		return nil, fmt.Errorf("list entries failed: %w", err)
	}
	defer rows.Close()

	entries := []etlead.Entry{}
	for rows.Next() {
		e, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row *sql.Row) (*etlead.Entry, error) {
	e, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func scanRow(row rowScanner) (*etlead.Entry, error) {
	var (
		e            etlead.Entry
		assignmentID sql.NullString
		updatedAt    time.Time
	)
	if err := row.Scan(&e.LeadID, &assignmentID, &e.DealID, &e.PhoneNumber, &e.ListID, &e.AgentProfileID, &updatedAt); err != nil {
		return nil, err
	}
	e.AssignmentID = assignmentID.String
	e.UpdatedAt = updatedAt
	return &e, nil
}

func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
