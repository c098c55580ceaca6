package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/pkg/ginx"
)

// TagEditorServiceInterface 定义标签编辑弹窗服务的接口
type TagEditorServiceInterface interface {
	Open(ctx context.Context, req *entity.OpenTagEditorRequest) (*entity.TagEditorState, error)
	Query(ctx context.Context, req *entity.TagEditorQueryRequest) (*entity.TagEditorState, error)
	Key(ctx context.Context, req *entity.TagEditorKeyRequest) (*entity.TagEditorState, error)
	Toggle(ctx context.Context, req *entity.TagEditorTagRequest) (*entity.TagEditorState, error)
	Create(ctx context.Context, req *entity.TagEditorCreateRequest) (*entity.TagEditorState, error)
	Rename(ctx context.Context, req *entity.TagEditorRenameRequest) (*entity.TagEditorState, error)
	Recolor(ctx context.Context, req *entity.TagEditorRecolorRequest) (*entity.TagEditorState, error)
	DeleteTag(ctx context.Context, req *entity.TagEditorTagRequest) (*entity.TagEditorState, error)
	Dismiss(ctx context.Context, req *entity.TagEditorDismissRequest) (*entity.TagEditorState, error)
	Place(ctx context.Context, req *entity.PlaceTagEditorRequest) (*entity.Placement, error)
}

// TagEditor 标签编辑弹窗，每个请求都返回弹窗的最新状态
type TagEditor struct {
	tagEditorService TagEditorServiceInterface
}

func NewTagEditor(tagEditorService TagEditorServiceInterface) *TagEditor {
	return &TagEditor{
		tagEditorService: tagEditorService,
	}
}

func (e *TagEditor) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/open", ginx.Adapt5(e.Open))
	router.POST("/query", ginx.Adapt5(e.Query))
	router.POST("/key", ginx.Adapt5(e.Key))
	router.POST("/toggle", ginx.Adapt5(e.Toggle))
	router.POST("/create", ginx.Adapt5(e.Create))
	router.POST("/rename", ginx.Adapt5(e.Rename))
	router.POST("/recolor", ginx.Adapt5(e.Recolor))
	router.POST("/delete", ginx.Adapt5(e.DeleteTag))
	router.POST("/dismiss", ginx.Adapt5(e.Dismiss))
	router.POST("/place", ginx.Adapt5(e.Place))
}

func (e *TagEditor) Open(ctx *gin.Context, req *entity.OpenTagEditorRequest) (*entity.TagEditorState, error) {
	return e.tagEditorService.Open(ctx, req)
}

func (e *TagEditor) Query(ctx *gin.Context, req *entity.TagEditorQueryRequest) (*entity.TagEditorState, error) {
	return e.tagEditorService.Query(ctx, req)
}

func (e *TagEditor) Key(ctx *gin.Context, req *entity.TagEditorKeyRequest) (*entity.TagEditorState, error) {
	return e.tagEditorService.Key(ctx, req)
}

func (e *TagEditor) Toggle(ctx *gin.Context, req *entity.TagEditorTagRequest) (*entity.TagEditorState, error) {
	return e.tagEditorService.Toggle(ctx, req)
}

func (e *TagEditor) Create(ctx *gin.Context, req *entity.TagEditorCreateRequest) (*entity.TagEditorState, error) {
	return e.tagEditorService.Create(ctx, req)
}

func (e *TagEditor) Rename(ctx *gin.Context, req *entity.TagEditorRenameRequest) (*entity.TagEditorState, error) {
	return e.tagEditorService.Rename(ctx, req)
}

func (e *TagEditor) Recolor(ctx *gin.Context, req *entity.TagEditorRecolorRequest) (*entity.TagEditorState, error) {
	return e.tagEditorService.Recolor(ctx, req)
}

func (e *TagEditor) DeleteTag(ctx *gin.Context, req *entity.TagEditorTagRequest) (*entity.TagEditorState, error) {
	return e.tagEditorService.DeleteTag(ctx, req)
}

func (e *TagEditor) Dismiss(ctx *gin.Context, req *entity.TagEditorDismissRequest) (*entity.TagEditorState, error) {
	return e.tagEditorService.Dismiss(ctx, req)
}

func (e *TagEditor) Place(ctx *gin.Context, req *entity.PlaceTagEditorRequest) (*entity.Placement, error) {
	return e.tagEditorService.Place(ctx, req)
}
