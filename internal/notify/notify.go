package notify

import (
	"sync"
	"time"
)

// 单个订阅者的消息队列容量
const subscriberQueueSize = 16

// Event 缓存更新事件
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

// Subscriber 一个订阅者，持有自己的有界消息队列。
// 连接建立时注册，断开或出错时注销。
type Subscriber struct {
	ch chan Event
}

// C 返回订阅者的只读事件通道
func (s *Subscriber) C() <-chan Event {
	return s.ch
}

// Notifier 将缓存更新事件扇出给所有订阅者
type Notifier struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

// NewNotifier 创建通知器
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[*Subscriber]struct{})}
}

// Subscribe 注册一个新的订阅者
func (n *Notifier) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan Event, subscriberQueueSize)}
	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()
	return sub
}

// Unsubscribe 注销订阅者
func (n *Notifier) Unsubscribe(sub *Subscriber) {
	n.mu.Lock()
	delete(n.subs, sub)
	n.mu.Unlock()
}

// Publish 向所有订阅者推送事件。
// 发布方永不阻塞：某个订阅者队列已满时丢弃这条消息，不影响其他订阅者。
func (n *Notifier) Publish(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for sub := range n.subs {
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// SubscriberCount 当前订阅者数量
func (n *Notifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
