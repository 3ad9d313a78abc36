package dialer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFields_SplitsOnFirstColon(t *testing.T) {
	fields := parseFields("status: READY\r\nurl: http://x/y:8080\nno colon here\n: empty key\n")

	assert.Equal(t, "READY", fields["status"])
	assert.Equal(t, "http://x/y:8080", fields["url"])
	assert.Len(t, fields, 2)
}

func TestResult_FieldOnNil(t *testing.T) {
	var r *Result
	_, ok := r.Field("status")
	assert.False(t, ok)
	assert.False(t, r.OK())
}

func TestParseLeadIDs(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []int64
	}{
		{"summary line", "SUCCESS: lead_search LEADS FOUND IN THE SYSTEM: 1001|1002", []int64{1001, 1002}},
		{"summary with phone", "SUCCESS: lead_search LEADS FOUND IN THE SYSTEM: 5551234567|1001", []int64{1001}},
		{"pipe rows", "1001|5551234567|ret1cda9|NEW\n1003|5551234567|ret1cda9|NEW\n", []int64{1001, 1003}},
		{"line based", "2001\n2002\n2001\n", []int64{2001, 2002}},
		{"error body", "ERROR: lead_search NO LEADS FOUND - 5551234567", []int64{}},
		{"notice", "NOTICE: no matches", []int64{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLeadIDs(tc.raw))
		})
	}
}

// lead_all_info 带表头返回，lead_id 在末列
const leadAllInfoHeader = "status|user|vendor_lead_code|source_id|list_id|gmt_offset_now|phone_code|phone_number|title|first_name|middle_initial|last_name|address1|address2|address3|city|state|province|postal_code|country_code|gender|date_of_birth|alt_phone|email|security_phrase|comments|called_count|last_local_call_time|rank|owner|entry_list_id|lead_id"

const leadAllInfoRows = "NEW|api|DEAL-9|as-1|101|-5.00|1|5551234567||Mary||Ann Smith|||||||||U|0000-00-00|||||0|2026-05-01 10:00:00|0||0|777\n" +
	"CALLBK|api|DEAL-9|as-1|101|-5.00|1|5551234567||Mary||Ann Smith|||||||||U|0000-00-00|||||3|2026-05-01 10:00:00|0||0|778\n"

func TestParseLeadIDs_LeadAllInfo(t *testing.T) {
	assert.Equal(t, []int64{777, 778}, ParseLeadIDs(leadAllInfoHeader+"\n"+leadAllInfoRows))

	// 无表头时首列是状态，无法识别
	assert.Empty(t, ParseLeadIDs(leadAllInfoRows))
}

func TestParseAddedLeadID(t *testing.T) {
	id, ok := ParseAddedLeadID("SUCCESS: add_lead LEAD HAS BEEN ADDED - 5551234567|101|4821|-5|apiuser\n")
	assert.True(t, ok)
	assert.Equal(t, int64(4821), id)

	id, ok = ParseAddedLeadID("NOTICE: something\nlead_id: 77\n")
	assert.True(t, ok)
	assert.Equal(t, int64(77), id)

	_, ok = ParseAddedLeadID("ERROR: add_lead INVALID PHONE NUMBER LENGTH - 12|101")
	assert.False(t, ok)

	r := &Result{RawBody: "SUCCESS: lead_search LEADS FOUND IN THE SYSTEM: 12|13"}
	assert.Equal(t, []int64{12, 13}, r.LeadIDs())
}
