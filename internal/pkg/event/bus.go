/*
 * @Description: 一个带固定Worker池的异步事件总线
 */
package event

import (
	"log"
	"sync"
)

// Topic 事件类型
type Topic string

const (
	// 文章事件，payload 为 BlogEvent
	BlogCreated    Topic = "blog:created"
	BlogUpdated    Topic = "blog:updated"
	BlogDeleted    Topic = "blog:deleted"
	BlogLiked      Topic = "blog:liked"
	BlogBookmarked Topic = "blog:bookmarked"
	BlogViewed     Topic = "blog:viewed"
	CommentAdded   Topic = "blog:comment_added"
	BlogsSeeded    Topic = "blog:seeded"
	// 封面地址变化，订阅方据此重新提取主色
	BlogCoverChanged Topic = "blog:cover_changed"

	// 会话事件，payload 为 SessionEvent
	SessionChanged Topic = "auth:session_changed"

	// 主题事件，payload 为 model.ThemeProjection
	ThemeProjected Topic = "theme:projected"
)

// BlogEvent 是文章相关事件的负载
type BlogEvent struct {
	BlogID     string
	Value      int // 点赞/收藏为 +1/-1，其它事件为 0
	CoverImage string
}

// SessionEvent 是会话变化事件的负载
type SessionEvent struct {
	UserID    string
	SessionID string
	LoggedIn  bool
}

// Handler 事件处理器函数类型
type Handler func(payload interface{})

// Event 是在通道中传递的事件结构
type Event struct {
	Topic   Topic
	Payload interface{}
}

// Publisher 是 store 依赖的发布接口，测试中可替换
type Publisher interface {
	Publish(topic Topic, payload interface{})
}

// EventBus 实现了基于Worker池的异步事件总线
type EventBus struct {
	mu        sync.RWMutex
	handlers  map[Topic][]Handler
	eventChan chan Event
	closed    bool
	wg        sync.WaitGroup
}

// 定义Worker池和通道的配置
const (
	DefaultWorkerCount = 4
	DefaultChannelSize = 1024
)

// NewEventBus 创建并启动一个新的事件总线
func NewEventBus() *EventBus {
	return NewEventBusWithWorkers(DefaultWorkerCount)
}

// NewEventBusWithWorkers 指定 worker 数量创建事件总线。
// 需要严格按发布顺序处理时使用 1 个 worker。
func NewEventBusWithWorkers(count int) *EventBus {
	if count < 1 {
		count = 1
	}
	bus := &EventBus{
		handlers:  make(map[Topic][]Handler),
		eventChan: make(chan Event, DefaultChannelSize),
	}
	for i := 0; i < count; i++ {
		bus.wg.Add(1)
		go bus.worker(i + 1)
	}
	return bus
}

// worker 不断从通道中读取并处理事件
func (b *EventBus) worker(workerID int) {
	defer b.wg.Done()
	for event := range b.eventChan {
		b.mu.RLock()
		handlers := b.handlers[event.Topic]
		b.mu.RUnlock()
		for _, handler := range handlers {
			b.dispatch(event, handler)
		}
	}
	log.Printf("[EventBus] Worker %d stopped", workerID)
}

// dispatch 隔离单个 handler 的 panic，避免拖垮 worker
func (b *EventBus) dispatch(event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EventBus] ERROR: handler for topic '%s' panicked: %v", event.Topic, r)
		}
	}()
	handler(event.Payload)
}

// Subscribe 订阅一个事件
func (b *EventBus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish 非阻塞地发布事件，通道已满时丢弃并告警
func (b *EventBus) Publish(topic Topic, payload interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.eventChan <- Event{Topic: topic, Payload: payload}:
	default:
		log.Printf("[EventBus] WARN: Event channel is full. Dropping event for topic '%s'.", topic)
	}
}

// Shutdown 优雅地关闭事件总线，等待已入队事件处理完毕
func (b *EventBus) Shutdown() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.eventChan)
	b.mu.Unlock()

	b.wg.Wait()
	log.Println("[EventBus] All workers have stopped.")
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

func (NopPublisher) Publish(Topic, interface{}) {}
