package leadindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention/dialersync/internal/app/domains/entity/etlead"
	"retention/dialersync/internal/app/pkg/logger"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func entry(t *testing.T, leadID int64, ids etlead.Identifiers, offset time.Duration) *etlead.Entry {
	t.Helper()
	e, err := etlead.NewEntry(leadID, ids, baseTime.Add(offset))
	require.NoError(t, err)
	return e
}

// stores 两种实现跑同一组行为用例
func stores(t *testing.T) map[string]Index {
	dir := t.TempDir()

	sqlite, err := NewSQLiteStore(filepath.Join(dir, "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Index{
		DriverFile:   NewFileStore(filepath.Join(dir, "leads.json"), logger.NewNop()),
		DriverSQLite: sqlite,
	}
}

func TestIndex_UpsertAndLookupPrecedence(t *testing.T) {
	ctx := context.Background()
	for name, idx := range stores(t) {
		t.Run(name, func(t *testing.T) {
			// 仅电话匹配的较新条目
			require.NoError(t, idx.Upsert(ctx, entry(t, 200, etlead.Identifiers{
				AssignmentID: "as-other", PhoneNumber: "5551234567",
			}, time.Hour)))
			// assignmentId 精确匹配的条目
			require.NoError(t, idx.Upsert(ctx, entry(t, 100, etlead.Identifiers{
				AssignmentID: "as-1", DealID: "D-1", PhoneNumber: "+1 (555) 999-0000",
			}, 0)))

			got, err := idx.Lookup(ctx, etlead.Identifiers{AssignmentID: "as-1", PhoneNumber: "5551234567"})
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, int64(100), got.LeadID)

			got, err = idx.Lookup(ctx, etlead.Identifiers{AssignmentID: "missing", PhoneNumber: "1-555-123-4567"})
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, int64(200), got.LeadID)

			got, err = idx.Lookup(ctx, etlead.Identifiers{DealID: "d-1"})
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, int64(100), got.LeadID)

			got, err = idx.Lookup(ctx, etlead.Identifiers{AssignmentID: "nothing"})
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestIndex_CompositeKeyLookup(t *testing.T) {
	ctx := context.Background()
	for name, idx := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, idx.Upsert(ctx, entry(t, 1, etlead.Identifiers{
				DealID: "DEAL-7", PhoneNumber: "5551234567", ListID: "RET01", AgentProfileID: "P1",
			}, 0)))
			require.NoError(t, idx.Upsert(ctx, entry(t, 2, etlead.Identifiers{
				DealID: "DEAL-7", PhoneNumber: "5550000000", ListID: "RET01", AgentProfileID: "P2",
			}, time.Minute)))

			got, err := idx.Lookup(ctx, etlead.Identifiers{
				DealID: "deal-7", PhoneNumber: "15551234567", ListID: "ret01", AgentProfileID: "p1",
			})
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, int64(1), got.LeadID)
		})
	}
}

func TestIndex_UpsertSupersedes(t *testing.T) {
	ctx := context.Background()
	ids := etlead.Identifiers{AssignmentID: "as-1", DealID: "D", PhoneNumber: "5551234567", ListID: "L", AgentProfileID: "A"}

	for name, idx := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, idx.Upsert(ctx, entry(t, 10, ids, 0)))
			// 同组合键不同 assignment：后写覆盖
			require.NoError(t, idx.Upsert(ctx, entry(t, 11, etlead.Identifiers{
				AssignmentID: "as-2", DealID: "d", PhoneNumber: "555-123-4567", ListID: "l", AgentProfileID: "a",
			}, time.Minute)))
			// 同 lead_id 重写
			require.NoError(t, idx.Upsert(ctx, entry(t, 11, etlead.Identifiers{AssignmentID: "as-3"}, 2*time.Minute)))

			all, err := idx.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, int64(11), all[0].LeadID)
			assert.Equal(t, "as-3", all[0].AssignmentID)
		})
	}
}

func TestIndex_Remove(t *testing.T) {
	ctx := context.Background()
	for name, idx := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, idx.Upsert(ctx, entry(t, 1, etlead.Identifiers{AssignmentID: "a"}, 0)))
			require.NoError(t, idx.Upsert(ctx, entry(t, 2, etlead.Identifiers{AssignmentID: "b"}, 0)))

			n, err := idx.Remove(ctx, 1, 99)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			got, err := idx.Get(ctx, 1)
			require.NoError(t, err)
			assert.Nil(t, got)

			got, err = idx.Get(ctx, 2)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "b", got.AssignmentID)
		})
	}
}

func TestIndex_RejectsInvalidLeadID(t *testing.T) {
	for name, idx := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, idx.Upsert(context.Background(), &etlead.Entry{LeadID: 0}), etlead.ErrInvalidLeadID)
		})
	}
}

func TestFileStore_MissingAndCorrupted(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	missing := NewFileStore(filepath.Join(dir, "absent.json"), nil)
	all, err := missing.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	broken := NewFileStore(path, logger.NewNop())

	got, err := broken.Lookup(ctx, etlead.Identifiers{AssignmentID: "x"})
	require.NoError(t, err)
	assert.Nil(t, got)

	// 损坏文件在下一次写入时被覆盖
	require.NoError(t, broken.Upsert(ctx, entry(t, 5, etlead.Identifiers{AssignmentID: "x"}, 0)))
	all, err = broken.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestFileStore_LegacyArrayDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	body := `[{"externalLeadId": 42, "assignmentId": "as-42", "phoneNumber": "5551234567", "updatedAt": "2026-01-01T00:00:00Z"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	got, err := NewFileStore(path, nil).Lookup(context.Background(), etlead.Identifiers{AssignmentID: "as-42"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.LeadID)
}

func TestFileStore_DocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "leads.json")
	store := NewFileStore(path, nil)
	require.NoError(t, store.Upsert(context.Background(), entry(t, 7, etlead.Identifiers{AssignmentID: "as-7"}, 0)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"entries"`)
	assert.Contains(t, string(data), `"externalLeadId": 7`)
	assert.Contains(t, string(data), `"assignmentId": "as-7"`)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStore_ReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	store := NewFileStore(filepath.Join(dir, "leads.json"), nil)
	assert.NoError(t, store.Upsert(context.Background(), entry(t, 1, etlead.Identifiers{AssignmentID: "a"}, 0)))
}

func TestNew(t *testing.T) {
	idx, err := New("", filepath.Join(t.TempDir(), "leads.json"), nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, idx)

	_, err = New("postgres", "x", nil)
	assert.Error(t, err)
}
