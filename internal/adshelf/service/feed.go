package service

import (
	"context"
	"time"

	"github.com/jimyag/adshelf/internal/adshelf/adfeed"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/pkg/apierror"
	"github.com/rs/zerolog"
)

// FeedOptions 广告列表的分页和防抖配置
type FeedOptions struct {
	PageSize       int
	SearchDebounce time.Duration
}

// FeedService 管理会话中打开的广告列表
type FeedService struct {
	source adfeed.Source
	opts   FeedOptions
}

// NewFeedService 创建广告列表服务
func NewFeedService(source adfeed.Source, opts FeedOptions) *FeedService {
	return &FeedService{source: source, opts: opts}
}

// OpenFeed 打开一个广告列表并计算总数，第一页由 LoadMore 加载
func (s *FeedService) OpenFeed(ctx context.Context, req *entity.OpenFeedRequest) (*entity.FeedState, error) {
	logger := zerolog.Ctx(ctx)

	ws, err := workspaceOf(ctx)
	if err != nil {
		return nil, err
	}

	controller := adfeed.New(s.source, ws.Tags(), adfeed.Options{
		PageSize:       s.opts.PageSize,
		SearchDebounce: s.opts.SearchDebounce,
		Search:         req.Search,
		TagIDs:         req.TagIDs,
	})
	sentinel := adfeed.NewManualSentinel()
	controller.Observe(sentinel)

	feedID, ok := ws.addFeed(&feedEntry{controller: controller, sentinel: sentinel})
	if !ok {
		controller.Close()
		return nil, apierror.Unauthorized("session has been closed")
	}
	controller.Start(ctx)

	logger.Info().
		Str("feed_id", feedID).
		Str("search", req.Search).
		Strs("tag_ids", req.TagIDs).
		Msg("Feed opened successfully")
	return feedState(feedID, controller), nil
}

// SearchFeed 修改搜索文本，默认等待防抖窗口
func (s *FeedService) SearchFeed(ctx context.Context, req *entity.SearchFeedRequest) (*entity.FeedState, error) {
	entry, err := s.lookup(ctx, req.FeedID)
	if err != nil {
		return nil, err
	}
	if req.Immediate {
		entry.controller.ApplySearchNow(ctx, req.Query)
	} else {
		entry.controller.SetSearchQuery(req.Query)
	}
	return feedState(req.FeedID, entry.controller), nil
}

// ToggleFeedTag 切换标签筛选
func (s *FeedService) ToggleFeedTag(ctx context.Context, req *entity.ToggleFeedTagRequest) (*entity.FeedState, error) {
	entry, err := s.lookup(ctx, req.FeedID)
	if err != nil {
		return nil, err
	}
	entry.controller.ToggleTagFilter(ctx, req.TagID)
	return feedState(req.FeedID, entry.controller), nil
}

// LoadMore 客户端报告哨兵可见，加载下一页
func (s *FeedService) LoadMore(ctx context.Context, req *entity.FeedRequest) (*entity.FeedState, error) {
	entry, err := s.lookup(ctx, req.FeedID)
	if err != nil {
		return nil, err
	}
	entry.sentinel.Visible(ctx)
	return feedState(req.FeedID, entry.controller), nil
}

// Retry 出错后重新加载
func (s *FeedService) Retry(ctx context.Context, req *entity.FeedRequest) (*entity.FeedState, error) {
	entry, err := s.lookup(ctx, req.FeedID)
	if err != nil {
		return nil, err
	}
	entry.controller.Retry(ctx)
	return feedState(req.FeedID, entry.controller), nil
}

// State 返回列表当前状态
func (s *FeedService) State(ctx context.Context, req *entity.FeedRequest) (*entity.FeedState, error) {
	entry, err := s.lookup(ctx, req.FeedID)
	if err != nil {
		return nil, err
	}
	return feedState(req.FeedID, entry.controller), nil
}

// CloseFeed 关闭列表，取消未完成的加载
func (s *FeedService) CloseFeed(ctx context.Context, req *entity.FeedRequest) (*entity.CloseFeedResponse, error) {
	ws, err := workspaceOf(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := ws.removeFeed(req.FeedID)
	if !ok {
		return nil, apierror.NotFound("feed %s not found", req.FeedID)
	}
	entry.controller.Close()

	zerolog.Ctx(ctx).Info().Str("feed_id", req.FeedID).Msg("Feed closed successfully")
	return &entity.CloseFeedResponse{Return: true}, nil
}

func (s *FeedService) lookup(ctx context.Context, feedID string) (*feedEntry, error) {
	ws, err := workspaceOf(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := ws.feed(feedID)
	if !ok {
		return nil, apierror.NotFound("feed %s not found", feedID)
	}
	return entry, nil
}

func feedState(feedID string, controller *adfeed.Controller) *entity.FeedState {
	state := controller.State()
	state.FeedID = feedID
	return &state
}

func workspaceOf(ctx context.Context) (*Workspace, error) {
	ws, ok := WorkspaceFromContext(ctx)
	if !ok {
		return nil, apierror.Unauthorized("no active session")
	}
	return ws, nil
}
