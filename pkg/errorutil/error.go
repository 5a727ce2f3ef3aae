package errorutil

import (
	"errors"
	"fmt"
)

// 错误码（按故障域划分）
const (
	CodeInvalidInput            = 40001 // 输入图片为空/损坏，调用方可修复
	CodeDetectorUnavailable     = 50001 // 进程/网络层故障，可重试
	CodeDetectorOutputMalformed = 50002 // 检测器输出解析失败
	CodeStorageFailure          = 50003 // 图片存储失败，整个请求失败
)

// Error 错误结构（包含可重试标记）
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Retriable 创建可重试错误（网络错误、临时故障等）
func Retriable(message string) *Error {
	return &Error{
		Code:      500,
		Message:   message,
		Retryable: true,
	}
}

// NonRetriable 创建不可重试错误（参数错误、业务规则错误等）
func NonRetriable(message string) *Error {
	return &Error{
		Code:      400,
		Message:   message,
		Retryable: false,
	}
}

// InvalidInput 输入无效（4xx 级别，不可重试）
func InvalidInput(message string) *Error {
	return &Error{
		Code:      CodeInvalidInput,
		Message:   message,
		Retryable: false,
	}
}

// DetectorUnavailable 检测器不可用（进程/网络故障，可重试）
func DetectorUnavailable(message string, details string) *Error {
	return &Error{
		Code:       CodeDetectorUnavailable,
		Message:    message,
		Retryable:  true,
		DevDetails: details,
	}
}

// DetectorOutputMalformed 检测器输出解析失败
// details 需带上原始 stdout/stderr 便于排障，不可重试（同样的输入大概率同样的输出）
func DetectorOutputMalformed(message string, details string) *Error {
	return &Error{
		Code:       CodeDetectorOutputMalformed,
		Message:    message,
		Retryable:  false,
		DevDetails: details,
	}
}

// StorageFailure 图片存储失败（请求级致命错误，可重试）
func StorageFailure(message string, details string) *Error {
	return &Error{
		Code:       CodeStorageFailure,
		Message:    message,
		Retryable:  true,
		DevDetails: details,
	}
}

// Wrap 包装错误（已是 *Error 则原样返回）
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	// 默认为不可重试错误
	return &Error{
		Code:       500,
		Message:    err.Error(),
		Retryable:  false,
		DevDetails: fmt.Sprintf("%+v", err),
	}
}

// CodeOf 提取错误码，非 *Error 返回 500
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 500
}

// IsRetryable 错误是否可重试
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// UnWrapResponse 解包错误（用于 Response）
func UnWrapResponse(err error) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err)
}
