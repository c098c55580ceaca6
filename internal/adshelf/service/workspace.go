package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jimyag/adshelf/internal/adshelf/adfeed"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/tageditor"
	"github.com/jimyag/adshelf/internal/adshelf/tagstore"
	"github.com/rs/zerolog"
)

type workspaceKey struct{}

// ContextWithWorkspace 把会话工作区放入 context
func ContextWithWorkspace(ctx context.Context, ws *Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey{}, ws)
}

// WorkspaceFromContext 取出会话工作区
func WorkspaceFromContext(ctx context.Context) (*Workspace, bool) {
	ws, ok := ctx.Value(workspaceKey{}).(*Workspace)
	return ws, ok && ws != nil
}

type sessionKey struct{}

// ContextWithSession 把已认证的会话放入 context
func ContextWithSession(ctx context.Context, session *entity.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext 取出已认证的会话
func SessionFromContext(ctx context.Context) (*entity.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*entity.Session)
	return session, ok && session != nil
}

// feedEntry 打开的广告列表和它的哨兵
type feedEntry struct {
	controller *adfeed.Controller
	sentinel   *adfeed.ManualSentinel
}

// Workspace 一个会话的客户端状态：标签缓存、广告列表、标签编辑弹窗
type Workspace struct {
	sessionID string
	tags      *tagstore.Store

	mu      sync.Mutex
	feeds   map[string]*feedEntry
	editors map[string]*tageditor.Editor
	closed  bool
}

func newWorkspace(sessionID string, loader tagstore.Loader) *Workspace {
	return &Workspace{
		sessionID: sessionID,
		tags:      tagstore.New(loader),
		feeds:     make(map[string]*feedEntry),
		editors:   make(map[string]*tageditor.Editor),
	}
}

// SessionID 工作区所属会话
func (w *Workspace) SessionID() string {
	return w.sessionID
}

// Tags 会话的标签缓存
func (w *Workspace) Tags() *tagstore.Store {
	return w.tags
}

func (w *Workspace) addFeed(entry *feedEntry) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return "", false
	}
	id := "feed-" + uuid.NewString()
	w.feeds[id] = entry
	return id, true
}

func (w *Workspace) feed(id string) (*feedEntry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.feeds[id]
	return entry, ok
}

func (w *Workspace) removeFeed(id string) (*feedEntry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.feeds[id]
	delete(w.feeds, id)
	return entry, ok
}

func (w *Workspace) addEditor(editor *tageditor.Editor) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return "", false
	}
	id := "editor-" + uuid.NewString()
	w.editors[id] = editor
	return id, true
}

func (w *Workspace) editor(id string) (*tageditor.Editor, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	editor, ok := w.editors[id]
	return editor, ok
}

func (w *Workspace) removeEditor(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.editors, id)
}

// Close 关闭所有列表和弹窗，然后关闭标签缓存
func (w *Workspace) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	feeds := w.feeds
	editors := w.editors
	w.feeds = make(map[string]*feedEntry)
	w.editors = make(map[string]*tageditor.Editor)
	w.mu.Unlock()

	for _, entry := range feeds {
		entry.controller.Close()
	}
	for _, editor := range editors {
		editor.Close()
	}
	w.tags.Close()
}

// WorkspaceManager 按会话 ID 管理工作区
type WorkspaceManager struct {
	loader tagstore.Loader

	mu         sync.Mutex
	workspaces map[string]*workspaceEntry
}

type workspaceEntry struct {
	ws        *Workspace
	expiresAt time.Time
}

// NewWorkspaceManager 创建 WorkspaceManager，loader 用于每个工作区的标签缓存
func NewWorkspaceManager(loader tagstore.Loader) *WorkspaceManager {
	return &WorkspaceManager{
		loader:     loader,
		workspaces: make(map[string]*workspaceEntry),
	}
}

// Get 返回会话的工作区，第一次访问时创建
func (m *WorkspaceManager) Get(ctx context.Context, session *entity.Session) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.workspaces[session.SessionID]; ok {
		return entry.ws
	}

	ws := newWorkspace(session.SessionID, m.loader)
	m.workspaces[session.SessionID] = &workspaceEntry{
		ws:        ws,
		expiresAt: time.Unix(session.ExpiresAt, 0),
	}
	zerolog.Ctx(ctx).Debug().
		Str("session_id", session.SessionID).
		Str("user_id", session.UserID).
		Msg("Workspace created")
	return ws
}

// Close 关闭并移除会话的工作区
func (m *WorkspaceManager) Close(sessionID string) bool {
	m.mu.Lock()
	entry, ok := m.workspaces[sessionID]
	delete(m.workspaces, sessionID)
	m.mu.Unlock()

	if ok {
		entry.ws.Close()
	}
	return ok
}

// Sweep 关闭 token 已过期的工作区，返回关闭的数量
func (m *WorkspaceManager) Sweep(now time.Time) int {
	m.mu.Lock()
	var expired []*Workspace
	for id, entry := range m.workspaces {
		if !entry.expiresAt.After(now) {
			expired = append(expired, entry.ws)
			delete(m.workspaces, id)
		}
	}
	m.mu.Unlock()

	for _, ws := range expired {
		ws.Close()
	}
	return len(expired)
}

// CloseAll 关闭所有工作区
func (m *WorkspaceManager) CloseAll() {
	m.mu.Lock()
	entries := m.workspaces
	m.workspaces = make(map[string]*workspaceEntry)
	m.mu.Unlock()

	for _, entry := range entries {
		entry.ws.Close()
	}
}

// Len 当前工作区数量
func (m *WorkspaceManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workspaces)
}
