// Package adfeed 实现分页、搜索、按标签筛选的广告列表
//
// Controller 维护已加载的广告、页码和 hasMore。搜索文本或选中的标签变化时，
// 列表立即清空并回到第一页；每次变化都会递增 generation，
// 旧 generation 的响应到达后直接丢弃。
package adfeed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/metrics"
	"github.com/jimyag/adshelf/internal/adshelf/repository"
	"github.com/jimyag/adshelf/internal/adshelf/tagstore"
	"github.com/jimyag/adshelf/pkg/debounce"
	"github.com/rs/zerolog"
)

const (
	// DefaultPageSize 默认每页条数
	DefaultPageSize = 4
	// DefaultSearchDebounce 默认搜索防抖窗口
	DefaultSearchDebounce = 300 * time.Millisecond
)

// Source 广告数据来源
type Source interface {
	// SearchAds 按 captured_at DESC 返回一页广告，包含每条广告的标签快照
	SearchAds(ctx context.Context, query repository.AdQuery) ([]entity.Ad, error)
	// CountAds 满足条件的广告总数
	CountAds(ctx context.Context, query repository.AdQuery) (int64, error)
}

// Options Controller 配置
type Options struct {
	PageSize       int
	SearchDebounce time.Duration
	// Search 和 TagIDs 是初始筛选条件
	Search string
	TagIDs []string
}

// Controller 广告列表，可并发使用
type Controller struct {
	source   Source
	store    *tagstore.Store
	pageSize int

	debouncer *debounce.Debouncer[string]

	// baseCtx 用于防抖提交和标签变化回调，Close 时取消
	baseCtx    context.Context
	cancelBase context.CancelFunc
	unsubTags  func()

	mu           sync.Mutex
	search       string
	pendingQuery string
	selected     []string
	items        []entity.Ad
	seen         map[string]struct{}
	page         int
	hasMore      bool
	loading      bool
	errMsg       string
	total        int64
	countStale   bool
	generation   uint64
	stopSentinel []func()
	closed       bool
}

// New 创建 Controller，还不会加载任何数据
func New(source Source, store *tagstore.Store, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		source:     source,
		store:      store,
		pageSize:   opts.PageSize,
		baseCtx:    baseCtx,
		cancelBase: cancel,
		search:     opts.Search,
		selected:   uniqueIDs(opts.TagIDs),
	}
	c.debouncer = debounce.New(opts.SearchDebounce, func(text string) {
		c.applySearch(c.baseCtx, text)
	})
	c.unsubTags = store.Subscribe(c.onTagsChanged)
	c.resetLocked()
	return c
}

// Start 计算初始总数，打开列表后调用一次
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	gen := c.generation
	f := c.filterLocked()
	c.mu.Unlock()

	c.refreshCount(ctx, gen, f)
}

// SetSearchQuery 记录输入，静默一个防抖窗口后生效
func (c *Controller) SetSearchQuery(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pendingQuery = text
	c.mu.Unlock()

	c.debouncer.Push(text)
}

// ApplySearchNow 跳过防抖，立即生效
func (c *Controller) ApplySearchNow(ctx context.Context, text string) {
	c.debouncer.Cancel()
	c.applySearch(ctx, text)
}

// FlushSearch 立即提交还在防抖窗口内的输入
func (c *Controller) FlushSearch() bool {
	return c.debouncer.Flush()
}

// ToggleTagFilter 选中或取消选中标签，立即生效
func (c *Controller) ToggleTagFilter(ctx context.Context, tagID string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	selected := make([]string, 0, len(c.selected)+1)
	removed := false
	for _, id := range c.selected {
		if id == tagID {
			removed = true
			continue
		}
		selected = append(selected, id)
	}
	if !removed {
		selected = append(selected, tagID)
	}
	c.selected = selected
	gen := c.resetLocked()
	f := c.filterLocked()
	c.mu.Unlock()

	c.refreshCount(ctx, gen, f)
}

// LoadMore 加载下一页
// 正在加载、没有更多数据或者出错后直接返回，出错后需要 Retry
func (c *Controller) LoadMore(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.loading || !c.hasMore || c.errMsg != "" {
		c.mu.Unlock()
		return
	}
	c.loading = true
	gen := c.generation
	f := c.filterLocked()
	offset := (c.page - 1) * c.pageSize
	c.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	ads, err := c.fetch(ctx, f, offset)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.closed {
		logger.Debug().
			Uint64("generation", gen).
			Msg("Discarding stale ad page")
		return
	}
	c.loading = false

	if err != nil {
		logger.Error().Err(err).
			Str("search", f.search).
			Int("page", c.page).
			Msg("Failed to load ads")
		c.errMsg = "Failed to load ads: " + err.Error()
		return
	}

	for _, ad := range ads {
		if _, ok := c.seen[ad.ID]; ok {
			continue
		}
		c.seen[ad.ID] = struct{}{}
		ad.Tags = c.store.Reconcile(ad.Tags)
		c.items = append(c.items, ad)
	}
	c.page++
	c.hasMore = len(ads) >= c.pageSize
	metrics.FeedPagesLoaded.Inc()
}

// Observe 哨兵可见时加载下一页，使用报告可见的调用方的 ctx
func (c *Controller) Observe(sentinel Sentinel) {
	stop := sentinel.Observe(func(ctx context.Context) {
		c.LoadMore(ctx)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		stop()
		return
	}
	c.stopSentinel = append(c.stopSentinel, stop)
}

// Retry 清除错误并重新加载
func (c *Controller) Retry(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.errMsg = ""
	countStale := c.countStale
	gen := c.generation
	f := c.filterLocked()
	c.mu.Unlock()

	if countStale {
		c.refreshCount(ctx, gen, f)
	}
	c.LoadMore(ctx)
}

// State 返回当前状态的副本
func (c *Controller) State() entity.FeedState {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]entity.Ad, 0, len(c.items))
	for _, ad := range c.items {
		ad.Tags = append([]entity.Tag{}, ad.Tags...)
		items = append(items, ad)
	}
	pending := ""
	if c.debouncer.Pending() {
		pending = c.pendingQuery
	}
	return entity.FeedState{
		Items:        items,
		HasMore:      c.hasMore,
		Loading:      c.loading,
		Error:        c.errMsg,
		Total:        c.total,
		Page:         c.page,
		Search:       c.search,
		PendingQuery: pending,
		SelectedTags: append([]string{}, c.selected...),
	}
}

// Close 停止防抖和哨兵，取消未完成的调用
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	stops := c.stopSentinel
	c.stopSentinel = nil
	c.mu.Unlock()

	c.debouncer.Cancel()
	c.unsubTags()
	for _, stop := range stops {
		stop()
	}
	c.cancelBase()
}

func (c *Controller) applySearch(ctx context.Context, text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pendingQuery = ""
	if strings.TrimSpace(text) == strings.TrimSpace(c.search) {
		c.mu.Unlock()
		return
	}
	c.search = text
	gen := c.resetLocked()
	f := c.filterLocked()
	c.mu.Unlock()

	c.refreshCount(ctx, gen, f)
}

// fetch 加载一页
func (c *Controller) fetch(ctx context.Context, f filter, offset int) ([]entity.Ad, error) {
	// 先确保标签缓存已加载，快照才能被校正
	if _, err := c.store.Tags(ctx); err != nil {
		return nil, err
	}
	query := f.query()
	query.Offset = offset
	query.Limit = c.pageSize
	return c.source.SearchAds(ctx, query)
}

func (c *Controller) refreshCount(ctx context.Context, gen uint64, f filter) {
	total, err := c.source.CountAds(ctx, f.query())

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.closed {
		return
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to count ads")
		c.errMsg = "Failed to count ads: " + err.Error()
		c.countStale = true
		return
	}
	c.total = total
	c.countStale = false
}

// onTagsChanged 标签改名、改色、删除后校正已加载的广告，删除的标签同时移出筛选
func (c *Controller) onTagsChanged(tags []entity.Tag) {
	exists := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		exists[tag.ID] = struct{}{}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	for i := range c.items {
		c.items[i].Tags = c.store.Reconcile(c.items[i].Tags)
	}

	selected := c.selected[:0:0]
	for _, id := range c.selected {
		if _, ok := exists[id]; ok {
			selected = append(selected, id)
		}
	}
	if len(selected) == len(c.selected) {
		c.mu.Unlock()
		return
	}
	c.selected = selected
	gen := c.resetLocked()
	f := c.filterLocked()
	c.mu.Unlock()

	c.refreshCount(c.baseCtx, gen, f)
}

// resetLocked 回到第一页，调用方持有锁
func (c *Controller) resetLocked() uint64 {
	c.items = []entity.Ad{}
	c.seen = make(map[string]struct{})
	c.page = 1
	c.hasMore = true
	c.loading = false
	c.errMsg = ""
	c.total = 0
	c.countStale = true
	c.generation++
	return c.generation
}

// filter 生效的筛选条件
type filter struct {
	search string
	tagIDs []string
}

// query 有标签筛选时只在各标签广告的并集中搜索和分页
func (f filter) query() repository.AdQuery {
	return repository.AdQuery{Search: f.search, TagIDs: f.tagIDs}
}

// filterLocked 调用方持有锁
func (c *Controller) filterLocked() filter {
	return filter{
		search: c.search,
		tagIDs: append([]string(nil), c.selected...),
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
