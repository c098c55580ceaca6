package repository

import (
	"context"
	"strings"

	"github.com/jimyag/adshelf/internal/adshelf/repository/model"
	"gorm.io/gorm"
)

// AdQuery 广告列表查询条件
type AdQuery struct {
	// Search 不区分大小写，匹配 ad_text 或 advertiser_name 的子串
	Search string
	// TagIDs 不为空时只返回带有其中任一标签的广告
	TagIDs []string
	Offset int
	Limit  int
}

// AdRepository 广告仓库接口
type AdRepository interface {
	Create(ctx context.Context, ad *model.Ad) error
	GetByID(ctx context.Context, id string) (*model.Ad, error)
	Search(ctx context.Context, query AdQuery) ([]*model.Ad, error)
	Count(ctx context.Context, query AdQuery) (int64, error)
	Delete(ctx context.Context, id string) error
}

type adRepository struct {
	db *gorm.DB
}

// NewAdRepository 创建广告仓库
func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db}
}

// Create 创建广告
func (r *adRepository) Create(ctx context.Context, ad *model.Ad) error {
	return r.db.WithContext(ctx).Create(ad).Error
}

// GetByID 根据 ID 获取广告
func (r *adRepository) GetByID(ctx context.Context, id string) (*model.Ad, error) {
	var ad model.Ad
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ad).Error; err != nil {
		return nil, err
	}
	return &ad, nil
}

// Search 按 captured_at DESC, id DESC 分页查询
func (r *adRepository) Search(ctx context.Context, query AdQuery) ([]*model.Ad, error) {
	db := r.filter(r.db.WithContext(ctx).Model(&model.Ad{}), query).
		Order("captured_at DESC").Order("id DESC")
	if query.Offset > 0 {
		db = db.Offset(query.Offset)
	}
	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}

	var ads []*model.Ad
	if err := db.Find(&ads).Error; err != nil {
		return nil, err
	}
	return ads, nil
}

// Count 统计满足条件的广告数量，忽略分页
func (r *adRepository) Count(ctx context.Context, query AdQuery) (int64, error) {
	var count int64
	if err := r.filter(r.db.WithContext(ctx).Model(&model.Ad{}), query).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete 只删除广告行，关联行由调用方先清理
func (r *adRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Ad{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *adRepository) filter(db *gorm.DB, query AdQuery) *gorm.DB {
	if len(query.TagIDs) > 0 {
		// 带有任一标签，用子查询避免把 ID 列表作为参数
		db = db.Where("id IN (SELECT ad_id FROM ad_tags WHERE tag_id IN ?)", query.TagIDs)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		lower := lowerFunc(db)
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		db = db.Where(
			"("+lower+"(ad_text) LIKE ? ESCAPE '\\' OR "+lower+"(advertiser_name) LIKE ? ESCAPE '\\')",
			pattern, pattern,
		)
	}
	return db
}

// lowerFunc SQLite 自带的 LOWER 只处理 ASCII，使用注册的 Unicode 版本
func lowerFunc(db *gorm.DB) string {
	if db.Dialector.Name() == DriverSQLite {
		return sqliteLowerFunc
	}
	return "LOWER"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 转义 LIKE 通配符
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
