// Package tageditor 实现单条广告的标签编辑弹窗
//
// 弹窗状态：closed → loading → ready，ready 下还有编辑子状态
// none、color_menu(tag)、renaming(tag)。关联和取消关联是乐观的：
// 先修改本地的关联列表，后端写入失败时恢复。
// 重命名、改色、删除先写入后端，再更新会话的标签缓存。
package tageditor

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/tagstore"
	"github.com/rs/zerolog"
)

// Phase 弹窗状态
type Phase string

const (
	PhaseClosed  Phase = "closed"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

// EditMode 编辑子状态
type EditMode string

const (
	EditNone      EditMode = "none"
	EditColorMenu EditMode = "color_menu"
	EditRenaming  EditMode = "renaming"
)

// Key 键盘按键
type Key string

const (
	KeyDown      Key = "Down"
	KeyUp        Key = "Up"
	KeyEnter     Key = "Enter"
	KeyBackspace Key = "Backspace"
	KeyEscape    Key = "Escape"
)

var (
	// ErrNotReady 弹窗没有打开或还在加载
	ErrNotReady = errors.New("tag editor is not ready")
	// ErrUnknownKey 不支持的按键
	ErrUnknownKey = errors.New("unknown key")
	// ErrEmptyName 标签名为空
	ErrEmptyName = errors.New("tag name is required")
	// ErrUnknownTag 标签不在缓存中
	ErrUnknownTag = errors.New("unknown tag")
)

// Backend 弹窗需要的后端操作
type Backend interface {
	ListTagsForAd(ctx context.Context, adID string) ([]entity.Tag, error)
	AttachTag(ctx context.Context, adID, tagID string) error
	DetachTag(ctx context.Context, adID, tagID string) error
	CreateTag(ctx context.Context, name, color string) (entity.Tag, error)
	UpdateTag(ctx context.Context, tag entity.Tag) (entity.Tag, error)
	DeleteTag(ctx context.Context, tagID string) error
}

// Editor 标签编辑弹窗，可并发使用
type Editor struct {
	backend Backend
	store   *tagstore.Store
	// randomColor 选择新建标签的颜色
	randomColor func() string

	mu           sync.Mutex
	adID         string
	phase        Phase
	query        string
	previewColor string
	highlighted  int
	attached     []entity.Tag
	editing      EditMode
	editingTagID string
	errMsg       string
}

// New 创建关闭状态的弹窗
func New(backend Backend, store *tagstore.Store) *Editor {
	return &Editor{
		backend:     backend,
		store:       store,
		randomColor: RandomColor,
		phase:       PhaseClosed,
		editing:     EditNone,
	}
}

// RandomColor 从调色板中随机选一个颜色
func RandomColor() string {
	return entity.TagPalette[rand.IntN(len(entity.TagPalette))].Value
}

// Open 为广告打开弹窗，加载全部标签和广告当前的标签
func (e *Editor) Open(ctx context.Context, adID string) error {
	e.mu.Lock()
	e.resetLocked()
	e.adID = adID
	e.phase = PhaseLoading
	e.previewColor = e.randomColor()
	e.mu.Unlock()

	if _, err := e.store.Tags(ctx); err != nil {
		return e.failOpen(adID, fmt.Errorf("load tags: %w", err))
	}
	attached, err := e.backend.ListTagsForAd(ctx, adID)
	if err != nil {
		return e.failOpen(adID, fmt.Errorf("load tags for ad: %w", err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// 加载期间弹窗被关闭或换了广告
	if e.phase != PhaseLoading || e.adID != adID {
		return nil
	}
	e.attached = e.store.Reconcile(attached)
	e.phase = PhaseReady
	return nil
}

func (e *Editor) failOpen(adID string, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.adID == adID {
		e.resetLocked()
		e.errMsg = err.Error()
	}
	return err
}

// SetQuery 修改过滤文本，高亮回到第一项
func (e *Editor) SetQuery(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.query = query
	e.highlighted = 0
	if query == "" {
		e.previewColor = e.randomColor()
	}
}

// Filtered 名称包含过滤文本（不区分大小写）的标签
func (e *Editor) Filtered() []entity.Tag {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filteredLocked()
}

// CreateOffered 过滤文本去掉空白后非空且没有同名标签时提供新建选项
func (e *Editor) CreateOffered() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.createOfferedLocked(e.filteredLocked())
}

// HandleKey 处理键盘事件
func (e *Editor) HandleKey(ctx context.Context, key Key) error {
	e.mu.Lock()
	if e.phase != PhaseReady {
		e.mu.Unlock()
		return ErrNotReady
	}

	filtered := e.filteredLocked()
	offered := e.createOfferedLocked(filtered)
	total := len(filtered)
	if offered {
		total++
	}

	switch key {
	case KeyDown:
		if total > 0 {
			e.highlighted = (e.highlighted + 1) % total
		}
		e.mu.Unlock()
		return nil
	case KeyUp:
		if total > 0 {
			e.highlighted = (e.highlighted - 1 + total) % total
		}
		e.mu.Unlock()
		return nil
	case KeyEnter:
		highlighted := e.highlighted
		query := e.query
		e.mu.Unlock()

		if offered && highlighted == 0 {
			_, err := e.Create(ctx, query, "")
			return err
		}
		index := highlighted
		if offered {
			index--
		}
		if index < 0 || index >= len(filtered) {
			return nil
		}
		return e.Toggle(ctx, filtered[index].ID)
	case KeyBackspace:
		if e.query != "" || len(e.attached) == 0 {
			e.mu.Unlock()
			return nil
		}
		last := e.attached[len(e.attached)-1]
		e.mu.Unlock()
		return e.Toggle(ctx, last.ID)
	case KeyEscape:
		if e.editing != EditNone {
			e.editing = EditNone
			e.editingTagID = ""
			e.mu.Unlock()
			return nil
		}
		e.mu.Unlock()
		e.Close()
		return nil
	default:
		e.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
}

// Toggle 乐观地关联或取消关联标签，失败时恢复原来的关联列表
func (e *Editor) Toggle(ctx context.Context, tagID string) error {
	e.mu.Lock()
	if e.phase != PhaseReady {
		e.mu.Unlock()
		return ErrNotReady
	}
	adID := e.adID
	prior := append([]entity.Tag(nil), e.attached...)
	isAttached := containsTag(prior, tagID)
	tag, ok := e.store.Get(tagID)
	if !isAttached && !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownTag, tagID)
	}
	e.mu.Unlock()

	var attempt Attempt
	if isAttached {
		attempt = attemptOf(func(ctx context.Context) error {
			return e.backend.DetachTag(ctx, adID, tagID)
		})
	} else {
		attempt = attemptOf(func(ctx context.Context) error {
			return e.backend.AttachTag(ctx, adID, tagID)
		})
	}

	res := optimistic(ctx,
		func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if isAttached {
				e.attached = removeTag(e.attached, tagID)
			} else {
				e.attached = append(e.attached, tag)
			}
		},
		attempt,
		func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.adID == adID {
				e.attached = prior
			}
		},
	)
	if !res.OK() {
		zerolog.Ctx(ctx).Error().Err(res.Err).
			Str("ad_id", adID).
			Str("tag_id", tagID).
			Bool("detach", isAttached).
			Msg("Failed to toggle tag, reverted")
		e.setError(res.Err)
		return res.Err
	}
	return nil
}

// Create 新建标签并关联到广告，name 为空时使用过滤文本，color 为空时使用预览颜色
func (e *Editor) Create(ctx context.Context, name, color string) (entity.Tag, error) {
	e.mu.Lock()
	if e.phase != PhaseReady {
		e.mu.Unlock()
		return entity.Tag{}, ErrNotReady
	}
	if strings.TrimSpace(name) == "" {
		name = e.query
	}
	if color == "" {
		color = e.previewColor
	}
	e.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return entity.Tag{}, ErrEmptyName
	}

	tag, err := e.backend.CreateTag(ctx, name, color)
	if err != nil {
		e.setError(err)
		return entity.Tag{}, err
	}
	e.store.Add(tag)

	if err := e.Toggle(ctx, tag.ID); err != nil {
		return tag, err
	}

	e.mu.Lock()
	e.query = ""
	e.highlighted = 0
	e.previewColor = e.randomColor()
	e.mu.Unlock()
	return tag, nil
}

// OpenColorMenu 打开标签的颜色菜单
func (e *Editor) OpenColorMenu(tagID string) error {
	return e.startEditing(EditColorMenu, tagID)
}

// StartRename 进入重命名
func (e *Editor) StartRename(tagID string) error {
	return e.startEditing(EditRenaming, tagID)
}

func (e *Editor) startEditing(mode EditMode, tagID string) error {
	if _, ok := e.store.Get(tagID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTag, tagID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseReady {
		return ErrNotReady
	}
	e.editing = mode
	e.editingTagID = tagID
	return nil
}

// Recolor 修改标签颜色
func (e *Editor) Recolor(ctx context.Context, tagID, color string) error {
	tag, ok := e.store.Get(tagID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTag, tagID)
	}
	tag.Color = color
	return e.writeTag(ctx, tag)
}

// Rename 重命名标签，新名称为空或没有变化时只退出重命名
func (e *Editor) Rename(ctx context.Context, tagID, name string) error {
	tag, ok := e.store.Get(tagID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTag, tagID)
	}
	name = strings.TrimSpace(name)
	if name == "" || name == tag.Name {
		e.stopEditing()
		return nil
	}
	tag.Name = name
	return e.writeTag(ctx, tag)
}

func (e *Editor) writeTag(ctx context.Context, tag entity.Tag) error {
	updated, err := e.backend.UpdateTag(ctx, tag)
	if err != nil {
		e.setError(err)
		return err
	}
	e.store.Update(updated)
	e.stopEditing()
	return nil
}

// DeleteTag 删除标签
func (e *Editor) DeleteTag(ctx context.Context, tagID string) error {
	if err := e.backend.DeleteTag(ctx, tagID); err != nil {
		e.setError(err)
		return err
	}
	e.store.Delete(tagID)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.attached = removeTag(e.attached, tagID)
	e.editing = EditNone
	e.editingTagID = ""
	return nil
}

// ClickOutside 点击弹窗和子菜单以外的地方时关闭
func (e *Editor) ClickOutside(inside bool) {
	if !inside {
		e.Close()
	}
}

// Close 关闭弹窗，已经发出的写入不受影响
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

// Phase 当前状态
func (e *Editor) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// State 返回当前状态的副本，关联的标签已按缓存校正
func (e *Editor) State() entity.TagEditorState {
	e.mu.Lock()
	defer e.mu.Unlock()

	filtered := e.filteredLocked()
	return entity.TagEditorState{
		AdID:          e.adID,
		Phase:         string(e.phase),
		Query:         e.query,
		Options:       filtered,
		CreateOffered: e.createOfferedLocked(filtered),
		PreviewColor:  e.previewColor,
		Highlighted:   e.highlighted,
		Attached:      e.store.Reconcile(e.attached),
		Editing:       string(e.editing),
		EditingTagID:  e.editingTagID,
		Error:         e.errMsg,
	}
}

func (e *Editor) stopEditing() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing = EditNone
	e.editingTagID = ""
}

func (e *Editor) setError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errMsg = err.Error()
}

func (e *Editor) filteredLocked() []entity.Tag {
	if e.phase != PhaseReady {
		return []entity.Tag{}
	}
	needle := strings.ToLower(e.query)
	out := []entity.Tag{}
	for _, tag := range e.store.Snapshot() {
		if strings.Contains(strings.ToLower(tag.Name), needle) {
			out = append(out, tag)
		}
	}
	return out
}

func (e *Editor) createOfferedLocked(filtered []entity.Tag) bool {
	trimmed := strings.TrimSpace(e.query)
	if trimmed == "" {
		return false
	}
	for _, tag := range filtered {
		if strings.EqualFold(tag.Name, trimmed) {
			return false
		}
	}
	return true
}

// resetLocked 回到关闭状态，调用方持有锁
func (e *Editor) resetLocked() {
	e.adID = ""
	e.phase = PhaseClosed
	e.query = ""
	e.highlighted = 0
	e.attached = nil
	e.editing = EditNone
	e.editingTagID = ""
	e.errMsg = ""
}

func containsTag(tags []entity.Tag, id string) bool {
	for _, tag := range tags {
		if tag.ID == id {
			return true
		}
	}
	return false
}

func removeTag(tags []entity.Tag, id string) []entity.Tag {
	out := make([]entity.Tag, 0, len(tags))
	for _, tag := range tags {
		if tag.ID != id {
			out = append(out, tag)
		}
	}
	return out
}
