package dialer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Outcome
	}{
		{"already exists with error marker", "ERROR: user already exists", OutcomeIdempotentExists},
		{"already exists upper", "ERROR: add_list LIST ALREADY EXISTS - 1001", OutcomeIdempotentExists},
		{"plain error", "ERROR: invalid password", OutcomeFailure},
		{"lowercase error", "error: bad syntax", OutcomeFailure},
		{"bad token", "add_lead|BAD|phone_number", OutcomeFailure},
		{"success", "SUCCESS: add_user USER HAS BEEN ADDED - jdoe", OutcomeSuccess},
		{"empty body", "", OutcomeSuccess},
		{"errors is not error", "NOTICE: 0 ERRORS", OutcomeSuccess},
		{"exists without error marker", "NOTICE: user already exists", OutcomeSuccess},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.raw))
		})
	}
}

func TestOutcome_OK(t *testing.T) {
	assert.True(t, OutcomeSuccess.OK())
	assert.True(t, OutcomeIdempotentExists.OK())
	assert.False(t, OutcomeFailure.OK())
	assert.Equal(t, "IdempotentExists", OutcomeIdempotentExists.String())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound("ERROR: update_lead NO MATCHES FOUND IN THE SYSTEM: 42"))
	assert.True(t, IsNotFound("ERROR: lead_all_info NO LEADS FOUND - DEAL-404"))
	assert.True(t, IsNotFound("ERROR: update_lead LEAD DOES NOT EXIST - 42"))
	assert.False(t, IsNotFound("ERROR: update_lead USER DOES NOT HAVE PERMISSION TO UPDATE LEADS"))
	assert.False(t, IsNotFound("SUCCESS: lead_search LEADS FOUND IN THE SYSTEM: 42"))
	assert.False(t, IsNotFound("NOTICE: lead not found"))
}
