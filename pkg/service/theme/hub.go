// pkg/service/theme/hub.go
package theme

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/binary-blogs/binary-blogs/internal/pkg/event"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 16
)

// Message 是推送给客户端的消息
type Message struct {
	Type       string                 `json:"type"`
	Projection *model.ThemeProjection `json:"projection,omitempty"`
}

// ClientMessage 是客户端上报的消息，目前只有系统明暗偏好
type ClientMessage struct {
	Type        string `json:"type"`
	PrefersDark bool   `json:"prefersDark"`
}

type client struct {
	conn         *websocket.Conn
	send         chan []byte
	lastRevision uint64
	closeOnce    sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Hub 把主题投影推送给所有 websocket 客户端。每个客户端只会收到比上次更新的 revision。
type Hub struct {
	upgrader websocket.Upgrader
	store    *Store

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub 创建推送中心
func NewHub(store *Store) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		store:   store,
		clients: make(map[*client]struct{}),
	}
}

// HandleEvent 是 event.ThemeProjected 的订阅函数
func (h *Hub) HandleEvent(payload interface{}) {
	p, ok := payload.(model.ThemeProjection)
	if !ok {
		log.Printf("[ThemeHub] 忽略未知负载: %T", payload)
		return
	}
	h.Broadcast(p)
}

// Subscribe 在事件总线上注册投影订阅
func (h *Hub) Subscribe(bus *event.EventBus) {
	bus.Subscribe(event.ThemeProjected, h.HandleEvent)
}

// Broadcast 推送投影，返回实际送达的客户端数
func (h *Hub) Broadcast(p model.ThemeProjection) int {
	data, err := json.Marshal(Message{Type: "projection", Projection: &p})
	if err != nil {
		log.Printf("[ThemeHub] 序列化投影失败: %v", err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for c := range h.clients {
		if p.Revision <= c.lastRevision {
			continue
		}
		select {
		case c.send <- data:
			c.lastRevision = p.Revision
			delivered++
		default:
			log.Printf("[ThemeHub] 客户端发送队列已满，断开连接")
			delete(h.clients, c)
			c.close()
		}
	}
	return delivered
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP 升级连接并立即发送当前投影
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ThemeHub] 升级 websocket 失败: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	current := h.store.Projection()
	data, err := json.Marshal(Message{Type: "projection", Projection: &current})
	if err != nil {
		conn.Close()
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	c.send <- data
	c.lastRevision = current.Revision
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writer(c)
	h.reader(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// reader 处理客户端上报，连接断开时移除客户端
func (h *Hub) reader(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ThemeHub] 连接异常关闭: %v", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[ThemeHub] 无法解析客户端消息: %v", err)
			continue
		}
		if msg.Type == "system" {
			if _, err := h.store.SetSystemPrefersDark(context.Background(), msg.PrefersDark); err != nil {
				log.Printf("[ThemeHub] 更新系统偏好失败: %v", err)
			}
		}
	}
}

func (h *Hub) writer(c *client) {
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
				log.Printf("[ThemeHub] 写入失败: %v", err)
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

// Close 断开所有客户端，之后的连接会被直接关闭
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}
