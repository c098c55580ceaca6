package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/repository"
	"github.com/jimyag/adshelf/internal/adshelf/repository/model"
	"github.com/jimyag/adshelf/pkg/apierror"
	"github.com/jimyag/adshelf/pkg/idgen"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DefaultTagColor 新建标签未指定颜色时使用
const DefaultTagColor = entity.ColorBrown

// TagService 标签服务
type TagService struct {
	tagRepo repository.TagRepository
	adRepo  repository.AdRepository
	idGen   *idgen.Generator
}

// NewTagService 创建标签服务
func NewTagService(repo *repository.Repository) *TagService {
	return &TagService{
		tagRepo: repository.NewTagRepository(repo.DB()),
		adRepo:  repository.NewAdRepository(repo.DB()),
		idGen:   idgen.New(),
	}
}

// ListTags 列出所有标签，按名称排序
// 有会话工作区时从标签缓存读取，第一次读取会加载缓存
func (s *TagService) ListTags(ctx context.Context, _ *entity.ListTagsRequest) (*entity.ListTagsResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("ListTags called")

	var (
		tags []entity.Tag
		err  error
	)
	if ws, ok := WorkspaceFromContext(ctx); ok {
		tags, err = ws.Tags().Tags(ctx)
	} else {
		tags, err = s.LoadTags(ctx)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list tags")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list tags", err)
	}

	return &entity.ListTagsResponse{
		Tags:    tags,
		Palette: entity.TagPalette,
	}, nil
}

// LoadTags 从数据库读取全部标签，实现 tagstore.Loader
func (s *TagService) LoadTags(ctx context.Context) ([]entity.Tag, error) {
	models, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return tagsModelToEntity(models)
}

// CreateTag 创建标签
func (s *TagService) CreateTag(ctx context.Context, req *entity.CreateTagRequest) (*entity.CreateTagResponse, error) {
	tag, err := s.createTag(ctx, req.Name, req.Color)
	if err != nil {
		return nil, err
	}
	if ws, ok := WorkspaceFromContext(ctx); ok {
		ws.Tags().Add(*tag)
	}
	return &entity.CreateTagResponse{Tag: tag}, nil
}

func (s *TagService) createTag(ctx context.Context, name, color string) (*entity.Tag, error) {
	logger := zerolog.Ctx(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierror.InvalidParameter("tag name is required")
	}
	if color == "" {
		color = DefaultTagColor
	}

	tagID, err := s.idGen.GenerateTagID()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate tag ID")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to generate tag ID", err)
	}

	m := &model.Tag{
		ID:        tagID,
		Name:      name,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tagRepo.Create(ctx, m); err != nil {
		logger.Error().Err(err).Str("name", name).Msg("Failed to create tag")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to create tag", err)
	}

	tag, err := tagModelToEntity(m)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert tag", err)
	}

	logger.Info().
		Str("tag_id", tag.ID).
		Str("name", tag.Name).
		Str("color", tag.Color).
		Msg("Tag created successfully")
	return tag, nil
}

// UpdateTag 重命名或修改颜色
func (s *TagService) UpdateTag(ctx context.Context, req *entity.UpdateTagRequest) (*entity.UpdateTagResponse, error) {
	m, err := s.tagRepo.GetByID(ctx, req.TagID)
	if err != nil {
		return nil, tagLookupError(ctx, req.TagID, err)
	}

	tag, err := tagModelToEntity(m)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert tag", err)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		tag.Name = name
	}
	if req.Color != "" {
		tag.Color = req.Color
	}

	updated, err := s.updateTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	if ws, ok := WorkspaceFromContext(ctx); ok {
		ws.Tags().Update(*updated)
	}
	return &entity.UpdateTagResponse{Tag: updated}, nil
}

func (s *TagService) updateTag(ctx context.Context, tag *entity.Tag) (*entity.Tag, error) {
	logger := zerolog.Ctx(ctx)

	if strings.TrimSpace(tag.Name) == "" {
		return nil, apierror.InvalidParameter("tag name is required")
	}

	m, err := tagEntityToModel(tag)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert tag", err)
	}
	if err := s.tagRepo.Update(ctx, m); err != nil {
		return nil, tagLookupError(ctx, tag.ID, err)
	}

	logger.Info().
		Str("tag_id", tag.ID).
		Str("name", tag.Name).
		Str("color", tag.Color).
		Msg("Tag updated successfully")
	return tag, nil
}

// DeleteTag 删除标签，先删除关联再删除标签
func (s *TagService) DeleteTag(ctx context.Context, req *entity.DeleteTagRequest) (*entity.DeleteTagResponse, error) {
	if err := s.deleteTag(ctx, req.TagID); err != nil {
		return nil, err
	}
	if ws, ok := WorkspaceFromContext(ctx); ok {
		ws.Tags().Delete(req.TagID)
	}
	return &entity.DeleteTagResponse{Return: true}, nil
}

func (s *TagService) deleteTag(ctx context.Context, tagID string) error {
	logger := zerolog.Ctx(ctx)

	if err := s.tagRepo.DeleteLinksByTag(ctx, tagID); err != nil {
		logger.Error().Err(err).Str("tag_id", tagID).Msg("Failed to delete tag links")
		return apierror.WrapError(apierror.ErrInternalError, "Failed to delete tag links", err)
	}
	if err := s.tagRepo.Delete(ctx, tagID); err != nil {
		return tagLookupError(ctx, tagID, err)
	}

	logger.Info().Str("tag_id", tagID).Msg("Tag deleted successfully")
	return nil
}

// AttachTag 给广告添加标签，已存在的关联会被忽略
func (s *TagService) AttachTag(ctx context.Context, req *entity.AdTagRequest) (*entity.AdTagResponse, error) {
	if err := s.attachTag(ctx, req.AdID, req.TagID); err != nil {
		return nil, err
	}
	return s.adTagResponse(ctx, req.AdID)
}

func (s *TagService) attachTag(ctx context.Context, adID, tagID string) error {
	logger := zerolog.Ctx(ctx)

	if _, err := s.adRepo.GetByID(ctx, adID); err != nil {
		return adLookupError(ctx, adID, err)
	}
	if _, err := s.tagRepo.GetByID(ctx, tagID); err != nil {
		return tagLookupError(ctx, tagID, err)
	}
	if err := s.tagRepo.Attach(ctx, adID, tagID); err != nil {
		logger.Error().Err(err).Str("ad_id", adID).Str("tag_id", tagID).Msg("Failed to attach tag")
		return apierror.WrapError(apierror.ErrInternalError, "Failed to attach tag", err)
	}

	logger.Info().Str("ad_id", adID).Str("tag_id", tagID).Msg("Tag attached successfully")
	return nil
}

// DetachTag 移除广告的标签，关联不存在时不报错
func (s *TagService) DetachTag(ctx context.Context, req *entity.AdTagRequest) (*entity.AdTagResponse, error) {
	if err := s.detachTag(ctx, req.AdID, req.TagID); err != nil {
		return nil, err
	}
	return s.adTagResponse(ctx, req.AdID)
}

func (s *TagService) detachTag(ctx context.Context, adID, tagID string) error {
	logger := zerolog.Ctx(ctx)

	if err := s.tagRepo.Detach(ctx, adID, tagID); err != nil {
		logger.Error().Err(err).Str("ad_id", adID).Str("tag_id", tagID).Msg("Failed to detach tag")
		return apierror.WrapError(apierror.ErrInternalError, "Failed to detach tag", err)
	}

	logger.Info().Str("ad_id", adID).Str("tag_id", tagID).Msg("Tag detached successfully")
	return nil
}

// ListAdTags 列出广告的标签
func (s *TagService) ListAdTags(ctx context.Context, req *entity.ListAdTagsRequest) (*entity.AdTagResponse, error) {
	return s.adTagResponse(ctx, req.AdID)
}

func (s *TagService) adTagResponse(ctx context.Context, adID string) (*entity.AdTagResponse, error) {
	tags, err := s.listTagsForAd(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ws, ok := WorkspaceFromContext(ctx); ok {
		tags = ws.Tags().Reconcile(tags)
	}
	return &entity.AdTagResponse{AdID: adID, Tags: tags}, nil
}

func (s *TagService) listTagsForAd(ctx context.Context, adID string) ([]entity.Tag, error) {
	models, err := s.tagRepo.ListByAd(ctx, adID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("ad_id", adID).Msg("Failed to list tags for ad")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list tags for ad", err)
	}
	tags, err := tagsModelToEntity(models)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert tags", err)
	}
	return tags, nil
}

// EditorBackend 标签编辑弹窗使用的后端，缓存由弹窗自己维护
func (s *TagService) EditorBackend() *TagEditorBackend {
	return &TagEditorBackend{tags: s}
}

// TagEditorBackend 实现 tageditor.Backend
type TagEditorBackend struct {
	tags *TagService
}

// ListTagsForAd 实现 tageditor.Backend
func (b *TagEditorBackend) ListTagsForAd(ctx context.Context, adID string) ([]entity.Tag, error) {
	return b.tags.listTagsForAd(ctx, adID)
}

// AttachTag 实现 tageditor.Backend
func (b *TagEditorBackend) AttachTag(ctx context.Context, adID, tagID string) error {
	return b.tags.attachTag(ctx, adID, tagID)
}

// DetachTag 实现 tageditor.Backend
func (b *TagEditorBackend) DetachTag(ctx context.Context, adID, tagID string) error {
	return b.tags.detachTag(ctx, adID, tagID)
}

// CreateTag 实现 tageditor.Backend
func (b *TagEditorBackend) CreateTag(ctx context.Context, name, color string) (entity.Tag, error) {
	tag, err := b.tags.createTag(ctx, name, color)
	if err != nil {
		return entity.Tag{}, err
	}
	return *tag, nil
}

// UpdateTag 实现 tageditor.Backend
func (b *TagEditorBackend) UpdateTag(ctx context.Context, tag entity.Tag) (entity.Tag, error) {
	updated, err := b.tags.updateTag(ctx, &tag)
	if err != nil {
		return entity.Tag{}, err
	}
	return *updated, nil
}

// DeleteTag 实现 tageditor.Backend
func (b *TagEditorBackend) DeleteTag(ctx context.Context, tagID string) error {
	return b.tags.deleteTag(ctx, tagID)
}

// tagLookupError 把 gorm.ErrRecordNotFound 转为 404，其余为 500
func tagLookupError(ctx context.Context, tagID string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound("tag %s not found", tagID)
	}
	zerolog.Ctx(ctx).Error().Err(err).Str("tag_id", tagID).Msg("Failed to access tag")
	return apierror.WrapError(apierror.ErrInternalError, "Failed to access tag", err)
}

// adLookupError 把 gorm.ErrRecordNotFound 转为 404，其余为 500
func adLookupError(ctx context.Context, adID string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound("ad %s not found", adID)
	}
	zerolog.Ctx(ctx).Error().Err(err).Str("ad_id", adID).Msg("Failed to access ad")
	return apierror.WrapError(apierror.ErrInternalError, "Failed to access ad", err)
}
