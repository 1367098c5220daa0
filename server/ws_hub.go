package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/message"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小（只会收到订阅帧）
	maxMessageSize = 1024

	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var errHubStopped = errors.New("ws hub stopped")

// wsClient ws和hub的连接
type wsClient struct {
	hub  *WsHub
	conn *websocket.Conn

	// 消息缓冲区
	send chan []byte

	UserID    uint64
	SessionID string
}

// WsHub 按主题分发推送的 websocket 服务端。
// 连接只能订阅属于自己的通知主题。
type WsHub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	// 主题 -> 订阅的连接
	topics map[string]map[*wsClient]struct{}

	register   chan *wsClient
	unregister chan *wsClient
	stop       chan struct{}
	stopOnce   sync.Once

	logger *zap.Logger
}

func NewWsHub(logger *zap.Logger) *WsHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WsHub{
		clients:    make(map[*wsClient]struct{}),
		topics:     make(map[string]map[*wsClient]struct{}),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		stop:       make(chan struct{}),
		logger:     logger,
	}
}

// Run 主循环，处理连接的加入与离开
func (h *WsHub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("ws 连接加入", zap.Uint64("user_id", c.UserID), zap.String("session_id", c.SessionID))

		case c := <-h.unregister:
			h.remove(c)

		case <-h.stop:
			h.mu.Lock()
			for c := range h.clients {
				h.removeLocked(c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop 关闭所有连接并退出 Run
func (h *WsHub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *WsHub) remove(c *wsClient) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// removeLocked 调用方持有写锁；重复移除无副作用
func (h *WsHub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for topic, subs := range h.topics {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	close(c.send)
}

func (h *WsHub) subscribe(c *wsClient, topic string) error {
	if topic == "" {
		return errors.New("topic is required")
	}
	if owner, ok := cons.TopicOwner(topic); ok && owner != c.UserID {
		return errors.New("cannot subscribe to another user's topic")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return errHubStopped
	}
	subs := h.topics[topic]
	if subs == nil {
		subs = make(map[*wsClient]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
	return nil
}

func (h *WsHub) unsubscribe(c *wsClient, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.topics[topic]; subs != nil {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Publish 把 payload 作为 message 帧发给该主题的所有连接。
// payload 必须是合法 JSON；发送缓冲满的连接直接断开。
func (h *WsHub) Publish(_ context.Context, topic string, payload []byte) error {
	b, err := json.Marshal(message.Frame{Type: message.WsTypeMessage, Topic: topic, Body: payload})
	if err != nil {
		return err
	}

	var slow []*wsClient
	h.mu.RLock()
	for c := range h.topics[topic] {
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, c := range slow {
			h.logger.Warn("ws 发送缓冲已满，断开连接", zap.Uint64("user_id", c.UserID), zap.String("session_id", c.SessionID))
			h.removeLocked(c)
		}
		h.mu.Unlock()
	}
	return nil
}

// Subscribers 某主题当前订阅的连接数
func (h *WsHub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// ServeWS 处理ws的请求
func (h *WsHub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws 升级失败", zap.Error(err))
		return
	}
	c := &wsClient{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		UserID:    userID,
		SessionID: uuid.NewString(),
	}
	select {
	case h.register <- c:
	case <-h.stop:
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump 读取订阅帧
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stop:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("ws 读取失败", zap.Uint64("user_id", c.UserID), zap.Error(err))
			}
			return
		}
		c.handleFrame(data)
	}
}

func (c *wsClient) handleFrame(data []byte) {
	var f message.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		c.reply(message.Frame{Type: message.WsTypeError, Message: "invalid frame"})
		return
	}
	switch f.Type {
	case message.WsTypeSubscribe:
		if err := c.hub.subscribe(c, f.Topic); err != nil {
			c.reply(message.Frame{Type: message.WsTypeError, Topic: f.Topic, Message: err.Error()})
		}
	case message.WsTypeUnsubscribe:
		c.hub.unsubscribe(c, f.Topic)
	default:
		c.reply(message.Frame{Type: message.WsTypeError, Topic: f.Topic, Message: "unsupported frame type: " + f.Type})
	}
}

// reply 直接回给本连接；连接已移除时丢弃
func (c *wsClient) reply(f message.Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

// writePump 将消息从hub写到具体的连接，一帧一条消息
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
