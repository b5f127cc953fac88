package dao

import (
	"sync"

	"github.com/propline/entity-notes-engine/internal/domain"
)

// ChangeListener 存储层变更回调
type ChangeListener func(record *domain.NoteRecord)

// Notifier delivers store change events to explicit subscribers, replacing
// the ambient cross-window broadcasting of the original UI layer.
// Callbacks run synchronously on the writer's goroutine and must be cheap.
//
// Notifier 将存储层的变更事件投递给显式订阅者，
// 取代原实现中跨窗口的全局事件广播。
// 回调在写入方的 goroutine 上同步执行，必须保持轻量。
type Notifier struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[string]map[int64]ChangeListener
	all    map[int64]ChangeListener
}

// NewNotifier 创建变更通知器
func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[string]map[int64]ChangeListener),
		all:  make(map[int64]ChangeListener),
	}
}

func subKey(entityType domain.EntityType, entityID string) string {
	return string(entityType) + ":" + entityID
}

// Subscribe registers fn for changes of one record; the returned func
// cancels the subscription.
// Subscribe 订阅单条记录的变更，返回的函数用于取消订阅。
func (n *Notifier) Subscribe(entityType domain.EntityType, entityID string, fn ChangeListener) func() {
	key := subKey(entityType, entityID)

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	if n.subs[key] == nil {
		n.subs[key] = make(map[int64]ChangeListener)
	}
	n.subs[key][id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if m, ok := n.subs[key]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(n.subs, key)
			}
		}
	}
}

// SubscribeAll registers fn for every record change
// SubscribeAll 订阅全部记录的变更
func (n *Notifier) SubscribeAll(fn ChangeListener) func() {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.all[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.all, id)
	}
}

// Publish 投递一条记录变更
func (n *Notifier) Publish(record *domain.NoteRecord) {
	n.mu.RLock()
	listeners := make([]ChangeListener, 0)
	if m, ok := n.subs[subKey(record.EntityType, record.EntityID)]; ok {
		for _, fn := range m {
			listeners = append(listeners, fn)
		}
	}
	for _, fn := range n.all {
		listeners = append(listeners, fn)
	}
	n.mu.RUnlock()

	for _, fn := range listeners {
		fn(record)
	}
}
