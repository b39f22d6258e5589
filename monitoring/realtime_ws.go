package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MessageType 消息类型
type MessageType string

const (
	MessagePrediction    MessageType = "prediction"
	MessageModelReloaded MessageType = "model_reloaded"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	ID        string          `json:"id"`
}

// ClientMessage 客户端消息，订阅或取消订阅消息类型
type ClientMessage struct {
	Type  string      `json:"type"`
	Topic MessageType `json:"topic,omitempty"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string

	mu            sync.Mutex
	subscriptions map[MessageType]bool
}

// wants 是否推送该类型消息，未订阅任何类型时接收全部
func (c *client) wants(t MessageType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.subscriptions) == 0 {
		return true
	}
	return c.subscriptions[t]
}

type outbound struct {
	msgType MessageType
	payload []byte
}

// Hub WebSocket中心，发送缓冲区满的慢客户端会被断开
type Hub struct {
	clients    map[*client]bool
	broadcast  chan outbound
	register   chan *client
	unregister chan *client
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *zap.Logger

	mu    sync.RWMutex
	count int
}

// NewHub 创建WebSocket中心，allowedOrigins为空或包含"*"时允许任意来源
func NewHub(logger *zap.Logger, allowedOrigins []string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(set) == 0 || set[origin]
	}
}

// Run 处理注册、注销和广播，ctx结束后关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.setCount(len(h.clients))
			h.logger.Debug("ws client connected", zap.String("client_id", c.id), zap.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
				h.setCount(len(h.clients))
				h.logger.Debug("ws client disconnected", zap.String("client_id", c.id), zap.Int("clients", len(h.clients)))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				if !c.wants(msg.msgType) {
					continue
				}
				select {
				case c.send <- msg.payload:
				default:
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn("ws client too slow, dropped", zap.String("client_id", c.id))
				}
			}
			h.setCount(len(h.clients))

		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.setCount(0)
			return
		}
	}
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Publish 广播消息，不阻塞，队列满时丢弃并返回false
func (h *Hub) Publish(t MessageType, data any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("ws payload encode failed", zap.String("type", string(t)), zap.Error(err))
		return false
	}
	payload, err := json.Marshal(Message{
		Type:      t,
		Timestamp: time.Now().UTC(),
		Data:      raw,
		ID:        uuid.NewString(),
	})
	if err != nil {
		h.logger.Error("ws message encode failed", zap.Error(err))
		return false
	}

	select {
	case h.broadcast <- outbound{msgType: t, payload: payload}:
		return true
	default:
		h.logger.Warn("ws broadcast queue full, dropping message", zap.String("type", string(t)))
		return false
	}
}

// ServeWS 处理WebSocket连接
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		hub:           h,
		conn:          conn,
		send:          make(chan []byte, sendBuffer),
		id:            uuid.NewString(),
		subscriptions: make(map[MessageType]bool),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug("ws write failed", zap.String("client_id", c.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("ws read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.logger.Debug("ws client message ignored", zap.String("client_id", c.id), zap.Error(err))
			continue
		}
		c.handle(msg)
	}
}

func (c *client) handle(msg ClientMessage) {
	switch msg.Type {
	case "subscribe":
		c.mu.Lock()
		c.subscriptions[msg.Topic] = true
		c.mu.Unlock()
	case "unsubscribe":
		c.mu.Lock()
		delete(c.subscriptions, msg.Topic)
		c.mu.Unlock()
	}
}
