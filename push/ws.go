package push

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cydxin/social-sdk/message"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second
)

// WsChannel 连接参考后端 /ws 的推送通道。
// 协议：上行 subscribe/unsubscribe 帧，下行 message 帧（见 message.Frame）。
// 一个会话一条连接，断线后由调用方重新创建。
type WsChannel struct {
	conn   *websocket.Conn
	reg    *registry
	logger *zap.Logger

	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// DialWs 建立连接；header 通常携带 X-User-ID
func DialWs(ctx context.Context, url string, header http.Header, logger *zap.Logger) (*WsChannel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	c := &WsChannel{
		conn:   conn,
		reg:    newRegistry(),
		logger: logger,
		done:   make(chan struct{}),
	}
	go c.readPump()
	return c, nil
}

// readPump 读取下行帧并按主题分发
func (c *WsChannel) readPump() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("推送连接读取失败", zap.Error(err))
			}
			return
		}
		var f message.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Warn("推送帧格式错误", zap.Error(err))
			continue
		}
		switch f.Type {
		case message.WsTypeMessage:
			c.reg.dispatch(f.Topic, f.Body)
		case message.WsTypeError:
			c.logger.Warn("推送服务端错误", zap.String("topic", f.Topic), zap.String("message", f.Message))
		}
	}
}

func (c *WsChannel) writeFrame(f message.Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *WsChannel) Subscribe(topic string, h Handler) (Subscription, error) {
	if err := checkSubscribe(topic, h); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	id, first := c.reg.add(topic, h)
	if first {
		if err := c.writeFrame(message.Frame{Type: message.WsTypeSubscribe, Topic: topic}); err != nil {
			c.reg.remove(topic, id)
			return nil, err
		}
	}
	return &subscription{topic: topic, cancel: func() error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.reg.remove(topic, id) || c.closed {
			return nil
		}
		return c.writeFrame(message.Frame{Type: message.WsTypeUnsubscribe, Topic: topic})
	}}, nil
}

// Done 连接读协程退出时关闭
func (c *WsChannel) Done() <-chan struct{} { return c.done }

func (c *WsChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}
