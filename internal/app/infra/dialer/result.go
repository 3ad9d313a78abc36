package dialer

import (
	"strconv"
	"strings"
)

// Result 一次 RPC 调用的结构化结果
// ParsedFields 仅尽力解析，字段缺失不代表失败；判定成功与否只看 RawBody
type Result struct {
	HTTPStatus   int               `json:"status"`
	RawBody      string            `json:"raw"`
	ParsedFields map[string]string `json:"parsed"`
	URL          string            `json:"-"`
}

// Field 读取解析字段
func (r *Result) Field(key string) (string, bool) {
	if r == nil || r.ParsedFields == nil {
		return "", false
	}
	v, ok := r.ParsedFields[key]
	return v, ok
}

// Outcome 对 RawBody 分类
func (r *Result) Outcome() Outcome {
	if r == nil {
		return OutcomeFailure
	}
	return Classify(r.RawBody)
}

// OK 成功或已存在
func (r *Result) OK() bool {
	return r.Outcome().OK()
}

// parseFields 按行拆分，每行按第一个冒号拆成 key/value
func parseFields(raw string) map[string]string {
	fields := make(map[string]string)
	for _, line := range splitLines(raw) {
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		if key == "" {
			continue
		}
		fields[key] = strings.TrimSpace(line[idx+1:])
	}
	return fields
}

func splitLines(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// maxLeadIDDigits lead_id 在平台侧为 INT(9)，10 位及以上的数字串视为电话号码
const maxLeadIDDigits = 9

// ParseLeadIDs 从搜索结果中提取 lead_id（去重，保持出现顺序）
// 支持三种格式：
//   - "SUCCESS: ... FOUND ...: 1001|1002" 摘要行，取最后一个冒号之后的全部数字
//   - 带表头（header=YES）的竖线分隔数据，取表头中 lead_id 所在列
//   - 无表头的竖线分隔或逐行数据，取第一列
func ParseLeadIDs(raw string) []int64 {
	seen := make(map[int64]bool)
	ids := make([]int64, 0)

	add := func(token string) {
		id, ok := parseLeadID(token)
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	column := 0
	for _, line := range splitLines(raw) {
		if errorPattern.MatchString(line) || strings.HasPrefix(strings.ToUpper(line), "NOTICE") {
			continue
		}

		if strings.HasPrefix(strings.ToUpper(line), "SUCCESS") {
			idx := strings.LastIndex(line, ":")
			if idx < 0 {
				continue
			}
			tokens := strings.FieldsFunc(line[idx+1:], func(r rune) bool {
				return r == '|' || r == ',' || r == ' ' || r == '\t'
			})
			for _, t := range tokens {
				add(t)
			}
			continue
		}

		cols := strings.Split(line, "|")
		if c := leadIDColumn(cols); c >= 0 {
			column = c
			continue
		}
		if column < len(cols) {
			add(cols[column])
		}
	}

	return ids
}

// leadIDColumn 表头行中 lead_id 的列号，非表头返回 -1
func leadIDColumn(cols []string) int {
	for i, c := range cols {
		if strings.EqualFold(strings.TrimSpace(c), "lead_id") {
			return i
		}
	}
	return -1
}

// LeadIDs 从原始返回中提取 lead_id
func (r *Result) LeadIDs() []int64 {
	if r == nil {
		return []int64{}
	}
	return ParseLeadIDs(r.RawBody)
}

// ParseAddedLeadID 解析 add_lead 返回的新 lead_id
// 格式："SUCCESS: add_lead LEAD HAS BEEN ADDED - phone|list_id|lead_id|gmt_offset|user"
func ParseAddedLeadID(raw string) (int64, bool) {
	for _, line := range splitLines(raw) {
		if !strings.HasPrefix(strings.ToUpper(line), "SUCCESS") {
			continue
		}
		idx := strings.LastIndex(line, " - ")
		if idx < 0 {
			continue
		}
		parts := strings.Split(line[idx+3:], "|")
		if len(parts) >= 3 {
			if id, ok := parseLeadID(parts[2]); ok {
				return id, true
			}
		}
	}

	if v, ok := parseFields(raw)["lead_id"]; ok {
		return parseLeadID(v)
	}
	return 0, false
}

func parseLeadID(token string) (int64, bool) {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > maxLeadIDDigits {
		return 0, false
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
