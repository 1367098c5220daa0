package errs

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind int

const (
	KindUnknown    Kind = iota
	KindValidation      // 本地前置校验失败，未发起网络请求
	KindNetwork         // 传输/连接失败
	KindServer          // 非 2xx 响应或业务码非 0，带服务端消息
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// AppError 统一错误结构
type AppError struct {
	Kind      Kind
	Code      int    // 服务端业务码（仅 KindServer）
	Message   string // 可直接展示给用户的消息，可能为空
	Forbidden bool   // 服务端拒绝了非作者操作；分类仍是 KindServer
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		if e.Message != "" {
			return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Validation 创建本地校验错误
func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// Network 包装传输层错误
func Network(err error) *AppError {
	return &AppError{Kind: KindNetwork, Err: err}
}

// Server 创建服务端错误；message 为空时由调用方决定兜底文案
func Server(code int, message string) *AppError {
	return &AppError{Kind: KindServer, Code: code, Message: message}
}

// KindOf 返回错误分类，非 AppError 返回 KindUnknown
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Is 判断 err 是否属于 kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsAuthorization 是否为权限不足的服务端错误
func IsAuthorization(err error) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Kind == KindServer && ae.Forbidden
}

// UserMessage 取可展示的消息：优先服务端/校验消息，否则返回 fallback
func UserMessage(err error, fallback string) string {
	var ae *AppError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

// SubmissionError 发布评论/回复失败。Message 为服务端消息或兜底文案，
// Err 保留原始分类（网络/服务端）。
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed: %s: %v", e.Message, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Submission 包装提交失败，message 优先取服务端消息
func Submission(err error, fallback string) *SubmissionError {
	return &SubmissionError{Message: UserMessage(err, fallback), Err: err}
}
