package eventbus

import (
	"context"
	"sync"
	"time"
)

// 事件类型
const (
	TypeActivityLogged = "activity.logged"
	TypeHobbyLevelUp   = "hobby.level_up"
	TypeHobbyCreated   = "hobby.created"
	TypeReflection     = "reflection.created"
	TypeMoment         = "moment.created"
)

type Event struct {
	Type      string         `json:"type"`
	UserID    string         `json:"user_id,omitempty"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]string // ch -> 订阅的用户，空表示全部
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]string)}
}

func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch, userID := range h.subs {
		if userID != "" && evt.UserID != "" && userID != evt.UserID {
			continue
		}
		select {
		case ch <- evt:
		default:
			// 慢消费者直接丢弃，避免阻塞提交链路
		}
	}
}

// Subscribe 订阅事件；userID 非空时只收该用户的事件。ctx 结束后 channel 关闭。
func (h *Hub) Subscribe(ctx context.Context, userID string, buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	h.subs[ch] = userID
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Subscribers 当前订阅数
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
