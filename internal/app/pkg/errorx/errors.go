package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport 网络/DNS/超时，调用方决定是否重试
	KindTransport
	// KindPlatformRejected 外呼平台返回文本判定为失败
	KindPlatformRejected
	// KindConfigurationMissing 缺少必需的凭证或配置
	KindConfigurationMissing
	// KindIndexCorrupted 本地索引不可解析，可按空索引恢复
	KindIndexCorrupted
	// KindPartialBatchFailure 批量开通中部分实体失败
	KindPartialBatchFailure
	KindInvalidInput
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "TransportError"
	case KindPlatformRejected:
		return "PlatformRejected"
	case KindConfigurationMissing:
		return "ConfigurationMissing"
	case KindIndexCorrupted:
		return "IndexCorrupted"
	case KindPartialBatchFailure:
		return "PartialBatchFailure"
	case KindInvalidInput:
		return "InvalidInput"
	case KindNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// 用于 errors.Is 判断的哨兵错误
var (
	ErrTransport            = &Error{Kind: KindTransport}
	ErrPlatformRejected     = &Error{Kind: KindPlatformRejected}
	ErrConfigurationMissing = &Error{Kind: KindConfigurationMissing}
	ErrIndexCorrupted       = &Error{Kind: KindIndexCorrupted}
	ErrPartialBatchFailure  = &Error{Kind: KindPartialBatchFailure}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
	ErrNotFound             = &Error{Kind: KindNotFound}
)

// Error 业务错误结构（包含可重试标记）
type Error struct {
	Kind      Kind
	Op        string
	Message   string
	Retryable bool
	Err       error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// Unwrap 支持 errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Err
}

// Is 同 Kind 即视为相等
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Transport 创建传输层错误（可重试）
func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: "transport error", Retryable: true, Err: err}
}

// Rejected 创建平台拒绝错误，raw 为平台原始返回
func Rejected(op string, raw string) *Error {
	return &Error{Kind: KindPlatformRejected, Op: op, Message: raw}
}

// ConfigMissing 创建配置缺失错误
func ConfigMissing(key string) *Error {
	return &Error{Kind: KindConfigurationMissing, Message: fmt.Sprintf("%s is required", key)}
}

// IndexCorrupted 创建索引损坏错误
func IndexCorrupted(path string, err error) *Error {
	return &Error{Kind: KindIndexCorrupted, Op: path, Message: "lead index unreadable", Err: err}
}

// PartialBatch 创建部分失败错误
func PartialBatch(failed, total int) *Error {
	return &Error{Kind: KindPartialBatchFailure, Message: fmt.Sprintf("%d of %d agents had failures", failed, total)}
}

// InvalidInput 创建参数错误
func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// NotFound 创建不存在错误
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf 提取错误分类
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable 是否可重试
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// HTTPStatus 错误分类对应的 HTTP 状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConfigurationMissing:
		return http.StatusServiceUnavailable
	case KindTransport:
		return http.StatusBadGateway
	case KindPlatformRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
