package service

import (
	"context"
	"errors"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/tageditor"
	"github.com/jimyag/adshelf/pkg/apierror"
	"github.com/rs/zerolog"
)

// TagEditorService 管理会话中打开的标签编辑弹窗
type TagEditorService struct {
	backend tageditor.Backend
}

// NewTagEditorService 创建标签编辑弹窗服务
func NewTagEditorService(backend tageditor.Backend) *TagEditorService {
	return &TagEditorService{backend: backend}
}

// Open 为广告打开弹窗，加载广告当前的标签
func (s *TagEditorService) Open(ctx context.Context, req *entity.OpenTagEditorRequest) (*entity.TagEditorState, error) {
	logger := zerolog.Ctx(ctx)

	ws, err := workspaceOf(ctx)
	if err != nil {
		return nil, err
	}

	editor := tageditor.New(s.backend, ws.Tags())
	editorID, ok := ws.addEditor(editor)
	if !ok {
		return nil, apierror.Unauthorized("session has been closed")
	}
	if err := editor.Open(ctx, req.AdID); err != nil {
		ws.removeEditor(editorID)
		logger.Error().Err(err).Str("ad_id", req.AdID).Msg("Failed to open tag editor")
		return nil, editorError(err)
	}

	logger.Info().Str("editor_id", editorID).Str("ad_id", req.AdID).Msg("Tag editor opened successfully")
	return editorState(editorID, editor), nil
}

// Query 修改过滤文本
func (s *TagEditorService) Query(ctx context.Context, req *entity.TagEditorQueryRequest) (*entity.TagEditorState, error) {
	editor, err := s.lookup(ctx, req.EditorID)
	if err != nil {
		return nil, err
	}
	editor.SetQuery(req.Query)
	return editorState(req.EditorID, editor), nil
}

// Key 处理键盘事件，Escape 会关闭弹窗
func (s *TagEditorService) Key(ctx context.Context, req *entity.TagEditorKeyRequest) (*entity.TagEditorState, error) {
	editor, err := s.lookup(ctx, req.EditorID)
	if err != nil {
		return nil, err
	}
	if err := editor.HandleKey(ctx, tageditor.Key(req.Key)); err != nil {
		return nil, editorError(err)
	}
	return s.stateOrForget(ctx, req.EditorID, editor), nil
}

// Toggle 关联或取消关联标签，失败时弹窗已回滚
func (s *TagEditorService) Toggle(ctx context.Context, req *entity.TagEditorTagRequest) (*entity.TagEditorState, error) {
	editor, err := s.lookup(ctx, req.EditorID)
	if err != nil {
		return nil, err
	}
	if err := editor.Toggle(ctx, req.TagID); err != nil {
		return nil, editorError(err)
	}
	return editorState(req.EditorID, editor), nil
}

// Create 新建标签并关联到广告
func (s *TagEditorService) Create(ctx context.Context, req *entity.TagEditorCreateRequest) (*entity.TagEditorState, error) {
	editor, err := s.lookup(ctx, req.EditorID)
	if err != nil {
		return nil, err
	}
	if _, err := editor.Create(ctx, req.Name, req.Color); err != nil {
		return nil, editorError(err)
	}
	return editorState(req.EditorID, editor), nil
}

// Rename 重命名标签
func (s *TagEditorService) Rename(ctx context.Context, req *entity.TagEditorRenameRequest) (*entity.TagEditorState, error) {
	editor, err := s.lookup(ctx, req.EditorID)
	if err != nil {
		return nil, err
	}
	if err := editor.Rename(ctx, req.TagID, req.Name); err != nil {
		return nil, editorError(err)
	}
	return editorState(req.EditorID, editor), nil
}

// Recolor 修改标签颜色
func (s *TagEditorService) Recolor(ctx context.Context, req *entity.TagEditorRecolorRequest) (*entity.TagEditorState, error) {
	editor, err := s.lookup(ctx, req.EditorID)
	if err != nil {
		return nil, err
	}
	if err := editor.Recolor(ctx, req.TagID, req.Color); err != nil {
		return nil, editorError(err)
	}
	return editorState(req.EditorID, editor), nil
}

// DeleteTag 从弹窗删除标签
func (s *TagEditorService) DeleteTag(ctx context.Context, req *entity.TagEditorTagRequest) (*entity.TagEditorState, error) {
	editor, err := s.lookup(ctx, req.EditorID)
	if err != nil {
		return nil, err
	}
	if err := editor.DeleteTag(ctx, req.TagID); err != nil {
		return nil, editorError(err)
	}
	return editorState(req.EditorID, editor), nil
}

// Dismiss 点击事件，点在弹窗外时关闭
func (s *TagEditorService) Dismiss(ctx context.Context, req *entity.TagEditorDismissRequest) (*entity.TagEditorState, error) {
	editor, err := s.lookup(ctx, req.EditorID)
	if err != nil {
		return nil, err
	}
	editor.ClickOutside(req.Inside)
	return s.stateOrForget(ctx, req.EditorID, editor), nil
}

// Place 计算弹窗位置
func (s *TagEditorService) Place(_ context.Context, req *entity.PlaceTagEditorRequest) (*entity.Placement, error) {
	if req.Viewport.Width <= 0 || req.Viewport.Height <= 0 {
		return nil, apierror.InvalidParameter("viewport size must be positive")
	}
	placement := tageditor.Place(req.Anchor, req.Viewport)
	return &placement, nil
}

func (s *TagEditorService) lookup(ctx context.Context, editorID string) (*tageditor.Editor, error) {
	ws, err := workspaceOf(ctx)
	if err != nil {
		return nil, err
	}
	editor, ok := ws.editor(editorID)
	if !ok {
		return nil, apierror.NotFound("tag editor %s not found", editorID)
	}
	return editor, nil
}

// stateOrForget 弹窗已关闭时从工作区移除
func (s *TagEditorService) stateOrForget(ctx context.Context, editorID string, editor *tageditor.Editor) *entity.TagEditorState {
	state := editorState(editorID, editor)
	if editor.Phase() == tageditor.PhaseClosed {
		if ws, ok := WorkspaceFromContext(ctx); ok {
			ws.removeEditor(editorID)
		}
	}
	return state
}

func editorState(editorID string, editor *tageditor.Editor) *entity.TagEditorState {
	state := editor.State()
	state.EditorID = editorID
	return &state
}

// editorError 把弹窗的错误转为 API 错误，后端返回的 API 错误保持不变
func editorError(err error) error {
	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
		return err
	case errors.Is(err, tageditor.ErrUnknownTag):
		return apierror.WrapError(apierror.ErrResourceNotFound, err.Error(), err)
	case errors.Is(err, tageditor.ErrUnknownKey), errors.Is(err, tageditor.ErrEmptyName):
		return apierror.WrapError(apierror.ErrInvalidParameter, err.Error(), err)
	case errors.Is(err, tageditor.ErrNotReady):
		return apierror.WrapError(apierror.ErrConflict, err.Error(), err)
	default:
		return apierror.WrapError(apierror.ErrInternalError, "Tag editor operation failed", err)
	}
}
