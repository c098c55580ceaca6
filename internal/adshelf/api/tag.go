package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/pkg/ginx"
	"github.com/rs/zerolog"
)

// TagServiceInterface 定义标签服务的接口
type TagServiceInterface interface {
	ListTags(ctx context.Context, req *entity.ListTagsRequest) (*entity.ListTagsResponse, error)
	CreateTag(ctx context.Context, req *entity.CreateTagRequest) (*entity.CreateTagResponse, error)
	UpdateTag(ctx context.Context, req *entity.UpdateTagRequest) (*entity.UpdateTagResponse, error)
	DeleteTag(ctx context.Context, req *entity.DeleteTagRequest) (*entity.DeleteTagResponse, error)
	AttachTag(ctx context.Context, req *entity.AdTagRequest) (*entity.AdTagResponse, error)
	DetachTag(ctx context.Context, req *entity.AdTagRequest) (*entity.AdTagResponse, error)
	ListAdTags(ctx context.Context, req *entity.ListAdTagsRequest) (*entity.AdTagResponse, error)
}

type Tag struct {
	tagService TagServiceInterface
}

func NewTag(tagService TagServiceInterface) *Tag {
	return &Tag{
		tagService: tagService,
	}
}

func (t *Tag) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/tags/list", ginx.Adapt5(t.ListTags))
	router.POST("/tags/create", ginx.Adapt5(t.CreateTag))
	router.POST("/tags/update", ginx.Adapt5(t.UpdateTag))
	router.POST("/tags/delete", ginx.Adapt5(t.DeleteTag))
	router.POST("/ads/tags/attach", ginx.Adapt5(t.AttachTag))
	router.POST("/ads/tags/detach", ginx.Adapt5(t.DetachTag))
	router.POST("/ads/tags/list", ginx.Adapt5(t.ListAdTags))
}

func (t *Tag) ListTags(ctx *gin.Context, req *entity.ListTagsRequest) (*entity.ListTagsResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("ListTags called")

	resp, err := t.tagService.ListTags(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list tags")
		return nil, err
	}
	return resp, nil
}

func (t *Tag) CreateTag(ctx *gin.Context, req *entity.CreateTagRequest) (*entity.CreateTagResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("name", req.Name).
		Str("color", req.Color).
		Msg("CreateTag called")

	resp, err := t.tagService.CreateTag(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create tag")
		return nil, err
	}
	return resp, nil
}

func (t *Tag) UpdateTag(ctx *gin.Context, req *entity.UpdateTagRequest) (*entity.UpdateTagResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("tag_id", req.TagID).
		Str("name", req.Name).
		Str("color", req.Color).
		Msg("UpdateTag called")

	resp, err := t.tagService.UpdateTag(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("tag_id", req.TagID).Msg("Failed to update tag")
		return nil, err
	}
	return resp, nil
}

func (t *Tag) DeleteTag(ctx *gin.Context, req *entity.DeleteTagRequest) (*entity.DeleteTagResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("tag_id", req.TagID).Msg("DeleteTag called")

	resp, err := t.tagService.DeleteTag(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("tag_id", req.TagID).Msg("Failed to delete tag")
		return nil, err
	}
	return resp, nil
}

func (t *Tag) AttachTag(ctx *gin.Context, req *entity.AdTagRequest) (*entity.AdTagResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("ad_id", req.AdID).Str("tag_id", req.TagID).Msg("AttachTag called")

	resp, err := t.tagService.AttachTag(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to attach tag")
		return nil, err
	}
	return resp, nil
}

func (t *Tag) DetachTag(ctx *gin.Context, req *entity.AdTagRequest) (*entity.AdTagResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("ad_id", req.AdID).Str("tag_id", req.TagID).Msg("DetachTag called")

	resp, err := t.tagService.DetachTag(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to detach tag")
		return nil, err
	}
	return resp, nil
}

func (t *Tag) ListAdTags(ctx *gin.Context, req *entity.ListAdTagsRequest) (*entity.AdTagResponse, error) {
	return t.tagService.ListAdTags(ctx, req)
}
