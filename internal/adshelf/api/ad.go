package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/pkg/ginx"
	"github.com/rs/zerolog"
)

// AdServiceInterface 定义广告服务的接口
type AdServiceInterface interface {
	CreateAd(ctx context.Context, req *entity.CreateAdRequest) (*entity.CreateAdResponse, error)
	DescribeAd(ctx context.Context, req *entity.DescribeAdRequest) (*entity.DescribeAdResponse, error)
	DeleteAd(ctx context.Context, req *entity.DeleteAdRequest) (*entity.DeleteAdResponse, error)
	Stats(ctx context.Context) (*entity.Stats, error)
}

type Ad struct {
	adService AdServiceInterface
}

func NewAd(adService AdServiceInterface) *Ad {
	return &Ad{
		adService: adService,
	}
}

func (a *Ad) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/ads/create", ginx.Adapt5(a.CreateAd))
	router.POST("/ads/describe", ginx.Adapt5(a.DescribeAd))
	router.POST("/ads/delete", ginx.Adapt5(a.DeleteAd))
	router.GET("/stats", ginx.Adapt3(a.Stats))
}

func (a *Ad) CreateAd(ctx *gin.Context, req *entity.CreateAdRequest) (*entity.CreateAdResponse, error) {
	logger := zerolog.Ctx(ctx)

	resp, err := a.adService.CreateAd(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("advertiser_name", req.AdvertiserName).Msg("Failed to create ad")
		return nil, err
	}
	return resp, nil
}

func (a *Ad) DescribeAd(ctx *gin.Context, req *entity.DescribeAdRequest) (*entity.DescribeAdResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("ad_id", req.AdID).Msg("DescribeAd called")

	resp, err := a.adService.DescribeAd(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("ad_id", req.AdID).Msg("Failed to describe ad")
		return nil, err
	}
	return resp, nil
}

func (a *Ad) DeleteAd(ctx *gin.Context, req *entity.DeleteAdRequest) (*entity.DeleteAdResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("ad_id", req.AdID).Msg("DeleteAd called")

	resp, err := a.adService.DeleteAd(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("ad_id", req.AdID).Msg("Failed to delete ad")
		return nil, err
	}
	return resp, nil
}

func (a *Ad) Stats(ctx *gin.Context) (*entity.Stats, error) {
	return a.adService.Stats(ctx)
}
