package response

import "encoding/json"

// Response 统一响应结构
type Response struct {
	Code int         `json:"code" example:"0"`      // 业务状态码
	Msg  string      `json:"msg" example:"success"` // 提示消息
	Data interface{} `json:"data,omitempty"`        // 响应数据
}

// Envelope 客户端解码用：Data 延迟解析
type Envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

// 业务状态码定义
// - 中间件层：使用 HTTP 状态码（401/403/500）
// - 业务层：HTTP 200 + 业务状态码
const (
	CodeSuccess        = 0     // 成功
	CodeParamError     = 10001 // 参数错误
	CodeUserNotFound   = 10002 // 用户不存在
	CodeNotFound       = 10003 // 资源不存在
	CodeTokenInvalid   = 10004 // 未识别用户
	CodePermissionDeny = 10005 // 权限不足
	CodeStateConflict  = 10006 // 状态冲突（例如重复申请好友）
	CodeInternalError  = 99999 // 内部错误
)

// Success 成功响应
func Success(data interface{}, args ...string) *Response {
	msg := "success"
	for _, arg := range args {
		msg = arg
	}
	return &Response{
		Code: CodeSuccess,
		Msg:  msg,
		Data: data,
	}
}

// Error 错误响应
func Error(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
