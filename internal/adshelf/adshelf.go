// Package adshelf 提供 adshelf 服务器的主入口和初始化逻辑
package adshelf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jimmicro/grace"
	"github.com/jimyag/adshelf/internal/adshelf/api"
	"github.com/jimyag/adshelf/internal/adshelf/config"
	"github.com/jimyag/adshelf/internal/adshelf/repository"
	"github.com/jimyag/adshelf/internal/adshelf/service"
	"github.com/jimyag/adshelf/pkg/objectstore"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// workspaceSweepInterval 清理过期会话工作区的周期
const workspaceSweepInterval = time.Minute

type Server struct {
	cfg        *config.Config
	api        *api.API
	repo       *repository.Repository
	workspaces *service.WorkspaceManager
	revoked    service.RevocationList
	sweeper    *workspaceSweeper

	closeOnce sync.Once
}

func New(cfg *config.Config) (*Server, error) {
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	zerolog.DefaultContextLogger = &logger

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	// 1. 数据库
	repo, err := repository.Open(cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("Repository opened")

	// 2. 媒体存储
	objects, err := objectstore.NewLocal(cfg.MediaDir(), cfg.Media.PublicBaseURL)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("create object store: %w", err)
	}
	logger.Info().Str("root", objects.Root()).Msg("Object store ready")

	// 3. 注销列表，配置了 redis 时多实例共享
	var revoked service.RevocationList
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisList, err := service.NewRedisRevocationList(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		revoked = redisList
		logger.Info().Msg("Using redis revocation list")
	} else {
		revoked = service.NewMemoryRevocationList()
	}

	// 4. 服务
	tagService := service.NewTagService(repo)
	adService := service.NewAdService(repo, objects, cfg.Media.Bucket)
	workspaces := service.NewWorkspaceManager(tagService)
	authService := service.NewAuthService(repo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, revoked, workspaces)
	feedService := service.NewFeedService(adService, service.FeedOptions{
		PageSize:       cfg.Feed.PageSize,
		SearchDebounce: cfg.Feed.SearchDebounce,
	})
	tagEditorService := service.NewTagEditorService(tagService.EditorBackend())

	// 5. API
	apiInstance, err := api.New(api.Options{
		Address:        cfg.Address,
		AllowedOrigins: cfg.AllowedOrigins,
	}, api.Services{
		Auth:       authService,
		Workspaces: workspaces,
		Tags:       tagService,
		Ads:        adService,
		Feeds:      feedService,
		TagEditors: tagEditorService,
		Objects:    objects,
	})
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	return &Server{
		cfg:        cfg,
		api:        apiInstance,
		repo:       repo,
		workspaces: workspaces,
		revoked:    revoked,
		sweeper:    newWorkspaceSweeper(workspaces, workspaceSweepInterval),
	}, nil
}

func (s *Server) Run(ctx context.Context) error {
	// 使用 grace.Shepherd 管理服务生命周期
	services := []grace.Grace{
		s.api,
		s.sweeper,
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	shepherd.Start(ctx)
	s.close()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.api.Shutdown(ctx)
	s.close()
	return err
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "adshelf Server"
}

// close 释放工作区和存储，可重复调用
func (s *Server) close() {
	s.closeOnce.Do(func() {
		s.workspaces.CloseAll()
		if c, ok := s.revoked.(io.Closer); ok {
			_ = c.Close()
		}
		_ = s.repo.Close()
	})
}

// newLogger 按配置创建 logger，设置了文件时由 lumberjack 负责切割
func newLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Logger{}, fmt.Errorf("create log dir: %w", err)
		}
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// zerologLogger 实现 grace.Logger 接口
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Info()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Error()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
