package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/pkg/ginx"
	"github.com/rs/zerolog"
)

// AuthServiceInterface 定义认证服务的接口
type AuthServiceInterface interface {
	SignUp(ctx context.Context, req *entity.SignUpRequest) (*entity.User, error)
	SignIn(ctx context.Context, req *entity.SignInRequest) (*entity.SignInResponse, error)
	SignOut(ctx context.Context) (*entity.SignOutResponse, error)
	CurrentUser(ctx context.Context) (*entity.User, error)
}

type Auth struct {
	authService AuthServiceInterface
}

func NewAuth(authService AuthServiceInterface) *Auth {
	return &Auth{
		authService: authService,
	}
}

// RegisterPublicRoutes 不需要登录的路由
func (a *Auth) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/sign-up", ginx.Adapt5(a.SignUp))
	router.POST("/sign-in", ginx.Adapt5(a.SignIn))
}

func (a *Auth) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sign-out", ginx.Adapt3(a.SignOut))
	router.GET("/me", ginx.Adapt3(a.Me))
}

func (a *Auth) SignUp(ctx *gin.Context, req *entity.SignUpRequest) (*entity.User, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("SignUp called")

	user, err := a.authService.SignUp(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to sign up")
		return nil, err
	}
	return user, nil
}

func (a *Auth) SignIn(ctx *gin.Context, req *entity.SignInRequest) (*entity.SignInResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("SignIn called")

	resp, err := a.authService.SignIn(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to sign in")
		return nil, err
	}
	return resp, nil
}

func (a *Auth) SignOut(ctx *gin.Context) (*entity.SignOutResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("SignOut called")

	resp, err := a.authService.SignOut(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to sign out")
		return nil, err
	}
	return resp, nil
}

func (a *Auth) Me(ctx *gin.Context) (*entity.User, error) {
	return a.authService.CurrentUser(ctx)
}
