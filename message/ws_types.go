package message

import "encoding/json"

// WS 帧类型
const (
	WsTypeSubscribe   = "subscribe"   // client -> server：订阅主题
	WsTypeUnsubscribe = "unsubscribe" // client -> server：取消订阅
	WsTypeMessage     = "message"     // server -> client：主题消息
	WsTypeError       = "error"       // server -> client：错误提示
)

// Frame WS 上下行统一帧
// Body 原样透传，由订阅方自行解析（通知对象 / 未读数的多种形态）。
type Frame struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
	Message string          `json:"message,omitempty"`
}
