// Package debounce 提供基于定时器的合并提交
//
// 在静默窗口内多次 Push 只会提交最后一个值，新的 Push 会重新计时。
package debounce

import (
	"sync"
	"time"
)

// Debouncer 合并连续的值，静默 delay 之后调用 fn
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	pending T
	armed   bool
	// seq 区分已经被替换的定时器
	seq uint64
}

// New 创建 Debouncer，fn 在定时器 goroutine 中执行
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		fn:    fn,
	}
}

// Push 记录新值并重新计时
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = v
	d.armed = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Flush 取消定时器并立即提交待提交的值，没有待提交的值时返回 false
func (d *Debouncer[T]) Flush() bool {
	v, ok := d.take()
	if !ok {
		return false
	}
	d.fn(v)
	return true
}

// Cancel 丢弃待提交的值
func (d *Debouncer[T]) Cancel() {
	d.take()
}

// Pending 是否有等待提交的值
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || !d.armed {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.reset()
	d.mu.Unlock()

	d.fn(v)
}

func (d *Debouncer[T]) take() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if !d.armed {
		return zero, false
	}
	v := d.pending
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.reset()
	return v, true
}

// reset 调用方持有锁
func (d *Debouncer[T]) reset() {
	var zero T
	d.pending = zero
	d.armed = false
	d.timer = nil
}
