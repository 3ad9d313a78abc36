package dialer

import (
	"regexp"
	"strings"
)

// Outcome 平台返回的分类结果
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeIdempotentExists 实体已存在，即期望的终态
	OutcomeIdempotentExists
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "Success"
	case OutcomeIdempotentExists:
		return "IdempotentExists"
	default:
		return "Failure"
	}
}

// OK 成功或已存在均视为成功
func (o Outcome) OK() bool {
	return o == OutcomeSuccess || o == OutcomeIdempotentExists
}

var (
	errorPattern         = regexp.MustCompile(`(?i)\bERROR\b`)
	alreadyExistsPattern = regexp.MustCompile(`(?i)ALREADY EXISTS`)
	notFoundPattern      = regexp.MustCompile(`(?i)NO (?:MATCHES|LEADS|RECORDS) FOUND|\bNOT FOUND\b|DOES NOT EXIST`)
)

const badToken = "|BAD|"

// Classify 根据原始文本判定结果
//
// 平台没有可靠的状态码，也没有稳定的错误词表。规则：
// 含 ERROR 单词或 |BAD| 即失败，除非同时含 ALREADY EXISTS（视为已存在）；其余一律成功。
// 已知局限：不含 ERROR 字样的错误文本会被判为成功。修改规则前需要用真实返回样本重新核对。
func Classify(raw string) Outcome {
	failed := errorPattern.MatchString(raw) || strings.Contains(raw, badToken)
	if !failed {
		return OutcomeSuccess
	}
	if alreadyExistsPattern.MatchString(raw) {
		return OutcomeIdempotentExists
	}
	return OutcomeFailure
}

// IsFailure 便捷判断
func IsFailure(raw string) bool {
	return Classify(raw) == OutcomeFailure
}

// IsNotFound 失败且平台明确表示目标不存在
func IsNotFound(raw string) bool {
	return IsFailure(raw) && notFoundPattern.MatchString(raw)
}
