package etlead

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	want := "5551234567"
	assert.Equal(t, want, NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, want, NormalizePhone("15551234567"))
	assert.Equal(t, want, NormalizePhone("5551234567"))
	assert.Equal(t, "25551234567", NormalizePhone("25551234567"))
	assert.Equal(t, "", NormalizePhone("n/a"))
}

func TestCompositeKey_Deterministic(t *testing.T) {
	a := CompositeKey(" Deal-42 ", "+1 (555) 123-4567", "LIST1", "Profile-A")
	b := Identifiers{
		AgentProfileID: "profile-a",
		ListID:         "list1",
		PhoneNumber:    "15551234567",
		DealID:         "deal-42",
	}.CompositeKey()

	assert.Equal(t, a, b)
	assert.Equal(t, "deal-42|5551234567|list1|profile-a", a)
}

func TestHasCompositeKey(t *testing.T) {
	assert.False(t, HasCompositeKey(CompositeKey("", "", "", "")))
	assert.True(t, HasCompositeKey(CompositeKey("", "555-123-4567", "", "")))
	assert.True(t, Identifiers{}.Empty())
	assert.False(t, Identifiers{AssignmentID: "a1"}.Empty())
}

func TestNewEntry(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	_, err := NewEntry(0, Identifiers{}, now)
	assert.ErrorIs(t, err, ErrInvalidLeadID)

	e, err := NewEntry(1001, Identifiers{AssignmentID: " a1 ", PhoneNumber: "+1 555 123 4567"}, now)
	require.NoError(t, err)
	assert.Equal(t, "a1", e.AssignmentID)
	assert.Equal(t, "5551234567", e.PhoneNumber)
	assert.Equal(t, now, e.UpdatedAt)
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("  Mary Ann  Smith ")
	assert.Equal(t, "Mary", first)
	assert.Equal(t, "Ann Smith", last)

	first, last = SplitName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Equal(t, "", last)
}
