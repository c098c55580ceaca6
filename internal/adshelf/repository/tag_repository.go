package repository

import (
	"context"
	"time"

	"github.com/jimyag/adshelf/internal/adshelf/repository/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository 标签仓库接口，每个方法只访问一次数据库
type TagRepository interface {
	List(ctx context.Context) ([]*model.Tag, error)
	ListByAd(ctx context.Context, adID string) ([]*model.Tag, error)
	ListByAds(ctx context.Context, adIDs []string) (map[string][]*model.Tag, error)
	GetByID(ctx context.Context, id string) (*model.Tag, error)
	Create(ctx context.Context, tag *model.Tag) error
	Update(ctx context.Context, tag *model.Tag) error
	Delete(ctx context.Context, id string) error
	Attach(ctx context.Context, adID, tagID string) error
	Detach(ctx context.Context, adID, tagID string) error
	DeleteLinksByTag(ctx context.Context, tagID string) error
	DeleteLinksByAd(ctx context.Context, adID string) error
	AdIDsByTags(ctx context.Context, tagIDs []string) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository 创建标签仓库
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// List 按名称排序列出所有标签
func (r *tagRepository) List(ctx context.Context) ([]*model.Tag, error) {
	var tags []*model.Tag
	if err := r.db.WithContext(ctx).
		Order("name ASC").Order("id ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ListByAd 通过关联表列出广告的标签，按关联先后排序
func (r *tagRepository) ListByAd(ctx context.Context, adID string) ([]*model.Tag, error) {
	var tags []*model.Tag
	if err := r.db.WithContext(ctx).
		Joins("JOIN ad_tags ON ad_tags.tag_id = tags.id").
		Where("ad_tags.ad_id = ?", adID).
		Order(attachOrder).
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// attachOrder 最后关联的标签排在最后，同一时刻按名称
const attachOrder = "ad_tags.created_at ASC, tags.name ASC"

// adTagRow ListByAds 的扫描行
type adTagRow struct {
	AdID      string    `gorm:"column:ad_id"`
	ID        string    `gorm:"column:id"`
	Name      string    `gorm:"column:name"`
	Color     string    `gorm:"column:color"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// ListByAds 一次查询一页广告的标签，key 是广告 ID
func (r *tagRepository) ListByAds(ctx context.Context, adIDs []string) (map[string][]*model.Tag, error) {
	result := make(map[string][]*model.Tag, len(adIDs))
	if len(adIDs) == 0 {
		return result, nil
	}

	var rows []adTagRow
	if err := r.db.WithContext(ctx).
		Table("ad_tags").
		Select("ad_tags.ad_id, tags.id, tags.name, tags.color, tags.created_at").
		Joins("JOIN tags ON tags.id = ad_tags.tag_id").
		Where("ad_tags.ad_id IN ?", adIDs).
		Order(attachOrder).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.AdID] = append(result[row.AdID], &model.Tag{
			ID:        row.ID,
			Name:      row.Name,
			Color:     row.Color,
			CreatedAt: row.CreatedAt,
		})
	}
	return result, nil
}

// GetByID 根据 ID 获取标签
func (r *tagRepository) GetByID(ctx context.Context, id string) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Create 创建标签
func (r *tagRepository) Create(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

// Update 按 ID 更新名称和颜色，标签不存在时返回 gorm.ErrRecordNotFound
func (r *tagRepository) Update(ctx context.Context, tag *model.Tag) error {
	result := r.db.WithContext(ctx).
		Model(&model.Tag{}).
		Where("id = ?", tag.ID).
		Updates(map[string]any{"name": tag.Name, "color": tag.Color})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 只删除标签行，关联行由调用方先清理
func (r *tagRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Tag{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Attach 插入关联行，已存在时忽略并保留原来的关联时间
func (r *tagRepository) Attach(ctx context.Context, adID, tagID string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.AdTag{AdID: adID, TagID: tagID, CreatedAt: &now}).Error
}

// Detach 按 (ad_id, tag_id) 精确删除关联行
func (r *tagRepository) Detach(ctx context.Context, adID, tagID string) error {
	return r.db.WithContext(ctx).
		Where("ad_id = ? AND tag_id = ?", adID, tagID).
		Delete(&model.AdTag{}).Error
}

// DeleteLinksByTag 删除引用该标签的所有关联行
func (r *tagRepository) DeleteLinksByTag(ctx context.Context, tagID string) error {
	return r.db.WithContext(ctx).Where("tag_id = ?", tagID).Delete(&model.AdTag{}).Error
}

// DeleteLinksByAd 删除该广告的所有关联行
func (r *tagRepository) DeleteLinksByAd(ctx context.Context, adID string) error {
	return r.db.WithContext(ctx).Where("ad_id = ?", adID).Delete(&model.AdTag{}).Error
}

// AdIDsByTags 返回带有任一标签的广告 ID（并集）
func (r *tagRepository) AdIDsByTags(ctx context.Context, tagIDs []string) ([]string, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	var adIDs []string
	if err := r.db.WithContext(ctx).
		Model(&model.AdTag{}).
		Distinct("ad_id").
		Where("tag_id IN ?", tagIDs).
		Pluck("ad_id", &adIDs).Error; err != nil {
		return nil, err
	}
	return adIDs, nil
}

// Count 返回标签总数
func (r *tagRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Tag{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
