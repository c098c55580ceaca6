package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/metrics"
	"github.com/jimyag/adshelf/internal/adshelf/repository"
	"github.com/jimyag/adshelf/internal/adshelf/repository/model"
	"github.com/jimyag/adshelf/pkg/apierror"
	"github.com/jimyag/adshelf/pkg/idgen"
	"github.com/jimyag/adshelf/pkg/objectstore"
	"github.com/rs/zerolog"
)

const (
	// DefaultMediaBucket 广告媒体所在的 bucket
	DefaultMediaBucket = "ads-media"

	unknownAdvertiser = "unknown_advertiser"
	octetStream       = "application/octet-stream"
	// sniffLen mimetype 判断类型需要读取的字节数
	sniffLen = 3072
)

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9]`)

// AdService 广告服务
type AdService struct {
	adRepo  repository.AdRepository
	tagRepo repository.TagRepository
	objects objectstore.ObjectStore
	bucket  string
	idGen   *idgen.Generator
	now     func() time.Time
}

// NewAdService 创建广告服务
func NewAdService(repo *repository.Repository, objects objectstore.ObjectStore, bucket string) *AdService {
	if bucket == "" {
		bucket = DefaultMediaBucket
	}
	return &AdService{
		adRepo:  repository.NewAdRepository(repo.DB()),
		tagRepo: repository.NewTagRepository(repo.DB()),
		objects: objects,
		bucket:  bucket,
		idGen:   idgen.New(),
		now:     time.Now,
	}
}

// CreateAd 上传头像和媒体文件，然后写入广告记录
// 任何一步失败都会中止，已经上传的文件不会删除
func (s *AdService) CreateAd(ctx context.Context, req *entity.CreateAdRequest) (*entity.CreateAdResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("advertiser_name", req.AdvertiserName).
		Bool("has_profile_image", req.ProfileImage != nil).
		Bool("has_media", req.Media != nil).
		Msg("CreateAd called")

	if strings.TrimSpace(req.AdvertiserName) == "" {
		return nil, apierror.InvalidParameter("advertiser_name is required")
	}
	if strings.TrimSpace(req.AdText) == "" {
		return nil, apierror.InvalidParameter("ad_text is required")
	}

	now := s.now().UTC()
	base := mediaBaseName(req.AdvertiserName, now)

	m := &model.Ad{
		ID:                    s.idGen.GenerateAdID(),
		LibraryID:             optional(req.LibraryID),
		StartedRunningOn:      optional(req.StartedRunningOn),
		AdvertiserName:        optional(req.AdvertiserName),
		AdvertiserProfileLink: optional(req.AdvertiserProfileLink),
		AdText:                optional(req.AdText),
		CapturedAt:            now,
	}

	if req.ProfileImage != nil {
		url, _, err := s.upload(ctx, "profile_image", "profile_"+base, req.ProfileImage)
		if err != nil {
			return nil, err
		}
		m.AdvertiserProfileImage = optional(url)
	}

	if req.Media != nil {
		url, mediaType, err := s.upload(ctx, "media", base, req.Media)
		if err != nil {
			return nil, err
		}
		m.MediaURL = optional(url)
		m.MediaType = optional(mediaType)
	}

	if err := s.adRepo.Create(ctx, m); err != nil {
		logger.Error().Err(err).Str("ad_id", m.ID).Msg("Failed to insert ad")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to insert ad", err)
	}

	ad, err := adModelToEntity(m)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert ad", err)
	}

	logger.Info().
		Str("ad_id", ad.ID).
		Str("media_type", ad.MediaType).
		Msg("Ad created successfully")

	return &entity.CreateAdResponse{Ad: ad}, nil
}

// upload 把一个表单文件写入对象存储，返回公开 URL 和媒体类型
func (s *AdService) upload(ctx context.Context, kind, baseName string, fh *multipart.FileHeader) (string, string, error) {
	logger := zerolog.Ctx(ctx)

	f, err := fh.Open()
	if err != nil {
		metrics.MediaUploads.WithLabelValues(kind, "error").Inc()
		logger.Error().Err(err).Str("kind", kind).Msg("Failed to open uploaded file")
		return "", "", apierror.WrapError(apierror.ErrInvalidParameter, "Failed to read uploaded file", err)
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	var body io.Reader = f
	if contentType == "" || contentType == octetStream {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(f, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			metrics.MediaUploads.WithLabelValues(kind, "error").Inc()
			return "", "", apierror.WrapError(apierror.ErrInvalidParameter, "Failed to read uploaded file", err)
		}
		head = head[:n]
		contentType = mimetype.Detect(head).String()
		body = io.MultiReader(bytes.NewReader(head), f)
	}

	name := baseName + "." + fileExt(fh.Filename, contentType)
	if err := s.objects.Upload(ctx, s.bucket, name, body, contentType); err != nil {
		metrics.MediaUploads.WithLabelValues(kind, "error").Inc()
		logger.Error().Err(err).
			Str("kind", kind).
			Str("bucket", s.bucket).
			Str("name", name).
			Msg("Failed to upload media")
		return "", "", apierror.WrapError(apierror.ErrUploadFailed, fmt.Sprintf("%s upload failed", kind), err)
	}
	metrics.MediaUploads.WithLabelValues(kind, "ok").Inc()

	logger.Debug().
		Str("kind", kind).
		Str("name", name).
		Str("content_type", contentType).
		Msg("Media uploaded successfully")

	return s.objects.PublicURL(s.bucket, name), mediaTypeOf(contentType), nil
}

// DescribeAd 查询单个广告及其标签
func (s *AdService) DescribeAd(ctx context.Context, req *entity.DescribeAdRequest) (*entity.DescribeAdResponse, error) {
	m, err := s.adRepo.GetByID(ctx, req.AdID)
	if err != nil {
		return nil, adLookupError(ctx, req.AdID, err)
	}

	ads, err := s.withTags(ctx, []*model.Ad{m})
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load ad tags", err)
	}
	ad := ads[0]
	if ws, ok := WorkspaceFromContext(ctx); ok {
		ad.Tags = ws.Tags().Reconcile(ad.Tags)
	}
	return &entity.DescribeAdResponse{Ad: &ad}, nil
}

// DeleteAd 删除广告，先删除标签关联再删除广告，媒体文件保留
func (s *AdService) DeleteAd(ctx context.Context, req *entity.DeleteAdRequest) (*entity.DeleteAdResponse, error) {
	logger := zerolog.Ctx(ctx)

	if err := s.tagRepo.DeleteLinksByAd(ctx, req.AdID); err != nil {
		logger.Error().Err(err).Str("ad_id", req.AdID).Msg("Failed to delete ad tag links")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to delete ad tag links", err)
	}
	if err := s.adRepo.Delete(ctx, req.AdID); err != nil {
		return nil, adLookupError(ctx, req.AdID, err)
	}

	logger.Info().Str("ad_id", req.AdID).Msg("Ad deleted successfully")
	return &entity.DeleteAdResponse{Return: true}, nil
}

// Stats 广告和标签总数
func (s *AdService) Stats(ctx context.Context) (*entity.Stats, error) {
	logger := zerolog.Ctx(ctx)

	totalAds, err := s.adRepo.Count(ctx, repository.AdQuery{})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to count ads")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to count ads", err)
	}
	totalTags, err := s.tagRepo.Count(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to count tags")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to count tags", err)
	}
	return &entity.Stats{TotalAds: totalAds, TotalTags: totalTags}, nil
}

// SearchAds 实现 adfeed.Source
func (s *AdService) SearchAds(ctx context.Context, query repository.AdQuery) ([]entity.Ad, error) {
	models, err := s.adRepo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.withTags(ctx, models)
}

// CountAds 实现 adfeed.Source
func (s *AdService) CountAds(ctx context.Context, query repository.AdQuery) (int64, error) {
	return s.adRepo.Count(ctx, query)
}

// withTags 转换广告并附上各自的标签
func (s *AdService) withTags(ctx context.Context, models []*model.Ad) ([]entity.Ad, error) {
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	tagsByAd, err := s.tagRepo.ListByAds(ctx, ids)
	if err != nil {
		return nil, err
	}

	ads := make([]entity.Ad, 0, len(models))
	for _, m := range models {
		ad, err := adModelToEntity(m)
		if err != nil {
			return nil, err
		}
		tags, err := tagsModelToEntity(tagsByAd[m.ID])
		if err != nil {
			return nil, err
		}
		ad.Tags = tags
		ads = append(ads, *ad)
	}
	return ads, nil
}

// mediaBaseName 生成 {advertiser}_{timestamp}，advertiser 只保留小写字母和数字
func mediaBaseName(advertiser string, now time.Time) string {
	safe := unsafeNameChars.ReplaceAllString(strings.ToLower(advertiser), "_")
	if safe == "" {
		safe = unknownAdvertiser
	}
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return safe + "_" + stamp
}

// fileExt 取文件名的扩展名，没有扩展名时按内容类型推断
func fileExt(filename, contentType string) string {
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if mt := mimetype.Lookup(contentType); mt != nil && mt.Extension() != "" {
		return strings.TrimPrefix(mt.Extension(), ".")
	}
	return "bin"
}

// mediaTypeOf video/* 为 video，其他为 image
func mediaTypeOf(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return entity.MediaTypeVideo
	}
	return entity.MediaTypeImage
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
