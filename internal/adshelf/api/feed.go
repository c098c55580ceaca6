package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/pkg/ginx"
	"github.com/rs/zerolog"
)

// FeedServiceInterface 定义广告列表服务的接口
type FeedServiceInterface interface {
	OpenFeed(ctx context.Context, req *entity.OpenFeedRequest) (*entity.FeedState, error)
	SearchFeed(ctx context.Context, req *entity.SearchFeedRequest) (*entity.FeedState, error)
	ToggleFeedTag(ctx context.Context, req *entity.ToggleFeedTagRequest) (*entity.FeedState, error)
	LoadMore(ctx context.Context, req *entity.FeedRequest) (*entity.FeedState, error)
	Retry(ctx context.Context, req *entity.FeedRequest) (*entity.FeedState, error)
	State(ctx context.Context, req *entity.FeedRequest) (*entity.FeedState, error)
	CloseFeed(ctx context.Context, req *entity.FeedRequest) (*entity.CloseFeedResponse, error)
}

type Feed struct {
	feedService FeedServiceInterface
}

func NewFeed(feedService FeedServiceInterface) *Feed {
	return &Feed{
		feedService: feedService,
	}
}

func (f *Feed) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/open", ginx.Adapt5(f.OpenFeed))
	router.POST("/search", ginx.Adapt5(f.SearchFeed))
	router.POST("/toggle-tag", ginx.Adapt5(f.ToggleFeedTag))
	router.POST("/load-more", ginx.Adapt5(f.LoadMore))
	router.POST("/retry", ginx.Adapt5(f.Retry))
	router.POST("/state", ginx.Adapt5(f.State))
	router.POST("/close", ginx.Adapt5(f.CloseFeed))
}

func (f *Feed) OpenFeed(ctx *gin.Context, req *entity.OpenFeedRequest) (*entity.FeedState, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("search", req.Search).
		Strs("tag_ids", req.TagIDs).
		Msg("OpenFeed called")

	state, err := f.feedService.OpenFeed(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open feed")
		return nil, err
	}
	return state, nil
}

func (f *Feed) SearchFeed(ctx *gin.Context, req *entity.SearchFeedRequest) (*entity.FeedState, error) {
	return f.feedService.SearchFeed(ctx, req)
}

func (f *Feed) ToggleFeedTag(ctx *gin.Context, req *entity.ToggleFeedTagRequest) (*entity.FeedState, error) {
	return f.feedService.ToggleFeedTag(ctx, req)
}

func (f *Feed) LoadMore(ctx *gin.Context, req *entity.FeedRequest) (*entity.FeedState, error) {
	return f.feedService.LoadMore(ctx, req)
}

func (f *Feed) Retry(ctx *gin.Context, req *entity.FeedRequest) (*entity.FeedState, error) {
	zerolog.Ctx(ctx).Info().Str("feed_id", req.FeedID).Msg("Retry called")
	return f.feedService.Retry(ctx, req)
}

func (f *Feed) State(ctx *gin.Context, req *entity.FeedRequest) (*entity.FeedState, error) {
	return f.feedService.State(ctx, req)
}

func (f *Feed) CloseFeed(ctx *gin.Context, req *entity.FeedRequest) (*entity.CloseFeedResponse, error) {
	return f.feedService.CloseFeed(ctx, req)
}
