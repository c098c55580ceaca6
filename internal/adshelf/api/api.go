// Package api 提供 adshelf 的 HTTP 接口
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/adshelf/internal/adshelf/service"
	"github.com/jimyag/adshelf/pkg/ginx"
	"github.com/jimyag/adshelf/pkg/objectstore"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options HTTP 服务配置
type Options struct {
	Address        string
	AllowedOrigins []string
}

// Services API 依赖的服务
type Services struct {
	Auth       *service.AuthService
	Workspaces *service.WorkspaceManager
	Tags       *service.TagService
	Ads        *service.AdService
	Feeds      *service.FeedService
	TagEditors *service.TagEditorService
	Objects    objectstore.ObjectStore
}

type API struct {
	engine *gin.Engine
	server *http.Server

	auth      *Auth
	tag       *Tag
	ad        *Ad
	feed      *Feed
	tagEditor *TagEditor
	media     *Media
}

func New(opts Options, services Services) (*API, error) {
	if services.Auth == nil || services.Workspaces == nil {
		return nil, errors.New("auth service and workspace manager are required")
	}

	api := &API{
		auth:      NewAuth(services.Auth),
		tag:       NewTag(services.Tags),
		ad:        NewAd(services.Ads),
		feed:      NewFeed(services.Feeds),
		tagEditor: NewTagEditor(services.TagEditors),
		media:     NewMedia(services.Objects),
	}
	api.engine = api.newEngine(opts, authenticate(services.Auth, services.Workspaces))
	api.server = &http.Server{
		Addr:              opts.Address,
		Handler:           api.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return api, nil
}

func (a *API) newEngine(opts Options, authMiddleware gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	// handler 直接把 *gin.Context 传给 service，需要回落到 Request.Context() 取日志和会话
	engine.ContextWithFallback = true
	engine.Use(gin.Recovery(), requestLogger(), metricsMiddleware(), cors(opts.AllowedOrigins))

	engine.GET("/healthz", ginx.Adapt2(func(*gin.Context) gin.H {
		return gin.H{"status": "ok"}
	}))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	a.media.RegisterRoutes(engine.Group(objectstore.MediaPrefix))

	apiGroup := engine.Group("/api")
	a.auth.RegisterPublicRoutes(apiGroup.Group("/auth"))

	protected := apiGroup.Group("", authMiddleware)
	a.auth.RegisterRoutes(protected.Group("/auth"))
	a.tag.RegisterRoutes(protected)
	a.ad.RegisterRoutes(protected)
	a.feed.RegisterRoutes(protected.Group("/feeds"))
	a.tagEditor.RegisterRoutes(protected.Group("/tag-editor"))
	return engine
}

// Handler 返回 HTTP handler，测试中使用
func (a *API) Handler() http.Handler {
	return a.engine
}

// Run 实现 grace.Grace 接口
func (a *API) Run(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Str("address", a.server.Addr).Msg("API server listening")
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 实现 grace.Grace 接口
func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (a *API) Name() string {
	return "adshelf API"
}
