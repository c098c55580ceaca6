package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/metrics"
	"github.com/jimyag/adshelf/internal/adshelf/service"
	"github.com/jimyag/adshelf/pkg/ginx"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// requestLogger 给每个请求分配请求 ID，并把带有请求信息的 logger 放入 context
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ginx.SetRequestID(c, requestID)
		c.Header(requestIDHeader, requestID)

		logger := zerolog.Ctx(c.Request.Context()).With().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// metricsMiddleware 记录请求数、耗时和正在处理的请求
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPInFlight.Inc()
		defer metrics.HTTPInFlight.Dec()

		c.Next()

		// 使用路由模板，避免标签基数过高
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// cors 只允许配置中的来源
func cors(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Expose-Headers", requestIDHeader)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Authenticator 校验访问令牌
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.Session, error)
}

// WorkspaceProvider 返回会话的工作区
type WorkspaceProvider interface {
	Get(ctx context.Context, session *entity.Session) *service.Workspace
}

// authenticate 要求 Authorization: Bearer <token>，通过后把会话和工作区放入 context
func authenticate(auth Authenticator, workspaces WorkspaceProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := auth.Authenticate(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("Request rejected")
			ginx.AbortWithError(c, err)
			return
		}

		ctx := service.ContextWithSession(c.Request.Context(), session)
		ctx = service.ContextWithWorkspace(ctx, workspaces.Get(ctx, session))
		logger := zerolog.Ctx(ctx).With().Str("user_id", session.UserID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx))
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
