package adfeed

import (
	"context"
	"sync"
)

// Sentinel 列表末尾的哨兵，变为可见时以报告方的 ctx 调用回调
type Sentinel interface {
	Observe(onVisible func(ctx context.Context)) (stop func())
}

// ManualSentinel 由调用方报告可见性的哨兵
// HTTP 层在客户端报告哨兵进入视口时调用 Visible
type ManualSentinel struct {
	mu        sync.Mutex
	observers map[uint64]func(context.Context)
	nextID    uint64
}

// NewManualSentinel 创建 ManualSentinel
func NewManualSentinel() *ManualSentinel {
	return &ManualSentinel{observers: make(map[uint64]func(context.Context))}
}

// Observe 实现 Sentinel 接口
func (s *ManualSentinel) Observe(onVisible func(ctx context.Context)) (stop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = onVisible
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Visible 通知所有观察者，回调在当前 goroutine 中同步执行
func (s *ManualSentinel) Visible(ctx context.Context) {
	s.mu.Lock()
	callbacks := make([]func(context.Context), 0, len(s.observers))
	for _, fn := range s.observers {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(ctx)
	}
}
