// Package tagstore 提供会话级的标签缓存
//
// Store 在第一次读取时从 Loader 加载全部标签，之后只通过 Add、Update、Delete
// 三个同步操作修改，不会重新加载。每次修改后把快照推送给订阅者，
// 所有显示标签的地方据此保持一致。
package tagstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
)

// Loader 加载全部标签
type Loader interface {
	LoadTags(ctx context.Context) ([]entity.Tag, error)
}

// LoaderFunc 函数形式的 Loader
type LoaderFunc func(ctx context.Context) ([]entity.Tag, error)

// LoadTags 实现 Loader 接口
func (f LoaderFunc) LoadTags(ctx context.Context) ([]entity.Tag, error) {
	return f(ctx)
}

// Listener 接收修改后的标签快照
type Listener func(tags []entity.Tag)

// Store 标签缓存
type Store struct {
	loader Loader

	// loadMu 保证同一时间只有一次加载
	loadMu sync.Mutex

	mu        sync.RWMutex
	loaded    bool
	closed    bool
	tags      []entity.Tag
	listeners map[uint64]Listener
	nextID    uint64
}

// New 创建标签缓存，此时不会访问数据库
func New(loader Loader) *Store {
	return &Store{
		loader:    loader,
		listeners: make(map[uint64]Listener),
	}
}

// Tags 返回全部标签，第一次调用时加载
func (s *Store) Tags(ctx context.Context) ([]entity.Tag, error) {
	if tags, ok := s.snapshot(); ok {
		return tags, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// 等锁期间可能已经加载完成
	if tags, ok := s.snapshot(); ok {
		return tags, nil
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	tags, err := s.loader.LoadTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.tags = sortTags(cloneTags(tags))
	s.loaded = true
	out := cloneTags(s.tags)
	s.mu.Unlock()
	return out, nil
}

// Snapshot 返回已加载的标签，不会触发加载
func (s *Store) Snapshot() []entity.Tag {
	tags, _ := s.snapshot()
	if tags == nil {
		return []entity.Tag{}
	}
	return tags
}

// Loaded 是否已经加载
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Get 按 ID 查找已缓存的标签
func (s *Store) Get(id string) (entity.Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tag := range s.tags {
		if tag.ID == id {
			return tag, true
		}
	}
	return entity.Tag{}, false
}

// Add 加入新标签，ID 已存在时替换
func (s *Store) Add(tag entity.Tag) {
	s.mutate(func(tags []entity.Tag) []entity.Tag {
		for i := range tags {
			if tags[i].ID == tag.ID {
				tags[i] = tag
				return tags
			}
		}
		return append(tags, tag)
	})
}

// Update 按 ID 替换名称和颜色，ID 不存在时忽略
func (s *Store) Update(tag entity.Tag) {
	s.mutate(func(tags []entity.Tag) []entity.Tag {
		for i := range tags {
			if tags[i].ID == tag.ID {
				tags[i].Name = tag.Name
				tags[i].Color = tag.Color
			}
		}
		return tags
	})
}

// Delete 按 ID 移除标签
func (s *Store) Delete(id string) {
	s.mutate(func(tags []entity.Tag) []entity.Tag {
		out := tags[:0]
		for _, tag := range tags {
			if tag.ID != id {
				out = append(out, tag)
			}
		}
		return out
	})
}

// Subscribe 注册监听器，返回取消函数
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Reconcile 用缓存中的名称和颜色替换快照里的标签，并去掉缓存中已不存在的标签
// 缓存还没有加载时原样返回
func (s *Store) Reconcile(snapshot []entity.Tag) []entity.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Tag, 0, len(snapshot))
	if !s.loaded {
		return append(out, snapshot...)
	}

	byID := make(map[string]entity.Tag, len(s.tags))
	for _, tag := range s.tags {
		byID[tag.ID] = tag
	}
	for _, tag := range snapshot {
		if cached, ok := byID[tag.ID]; ok {
			out = append(out, cached)
		}
	}
	return out
}

// Close 清空缓存并移除所有监听器，之后的修改都被忽略
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.loaded = false
	s.tags = nil
	s.listeners = make(map[uint64]Listener)
}

// mutate 修改已加载的列表并通知监听器
// 还没有加载时忽略，之后的加载会读到已经写入数据库的结果
func (s *Store) mutate(fn func([]entity.Tag) []entity.Tag) {
	s.mu.Lock()
	if s.closed || !s.loaded {
		s.mu.Unlock()
		return
	}
	s.tags = sortTags(fn(s.tags))
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	tags := cloneTags(s.tags)
	s.mu.Unlock()

	for _, l := range listeners {
		l(cloneTags(tags))
	}
}

func (s *Store) snapshot() ([]entity.Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, false
	}
	return cloneTags(s.tags), true
}

// sortTags 与仓库的 List 顺序一致：名称，然后 ID
func sortTags(tags []entity.Tag) []entity.Tag {
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Name != tags[j].Name {
			return tags[i].Name < tags[j].Name
		}
		return tags[i].ID < tags[j].ID
	})
	return tags
}

func cloneTags(tags []entity.Tag) []entity.Tag {
	out := make([]entity.Tag, len(tags))
	copy(out, tags)
	return out
}
