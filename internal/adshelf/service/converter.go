// Package service 提供业务逻辑层的服务实现
package service

import (
	"time"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
	"github.com/jimyag/adshelf/internal/adshelf/repository/model"
	"github.com/jinzhu/copier"
)

// adModelToEntity 将 model.Ad 转换为 entity.Ad，可空字段为 nil 时是空字符串
func adModelToEntity(m *model.Ad) (*entity.Ad, error) {
	e := &entity.Ad{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	// 处理时间字段
	e.CapturedAt = m.CapturedAt.UTC().Format(time.RFC3339Nano)
	e.Tags = []entity.Tag{}

	return e, nil
}

// tagModelToEntity 将 model.Tag 转换为 entity.Tag
func tagModelToEntity(m *model.Tag) (*entity.Tag, error) {
	e := &entity.Tag{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	// 处理时间字段
	e.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)

	return e, nil
}

// tagsModelToEntity 批量转换标签
func tagsModelToEntity(ms []*model.Tag) ([]entity.Tag, error) {
	tags := make([]entity.Tag, 0, len(ms))
	for _, m := range ms {
		tag, err := tagModelToEntity(m)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// tagEntityToModel 将 entity.Tag 转换为 model.Tag
func tagEntityToModel(e *entity.Tag) (*model.Tag, error) {
	m := &model.Tag{}
	if err := copier.Copy(m, e); err != nil {
		return nil, err
	}

	// 处理时间字段
	if e.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, e.CreatedAt); err == nil {
			m.CreatedAt = t
		} else {
			m.CreatedAt = time.Now().UTC()
		}
	} else {
		m.CreatedAt = time.Now().UTC()
	}

	return m, nil
}

// userModelToEntity 将 model.User 转换为 entity.User，不包含密码哈希
func userModelToEntity(m *model.User) (*entity.User, error) {
	e := &entity.User{}
	if err := copier.Copy(e, m); err != nil {
		return nil, err
	}

	// 处理时间字段
	e.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)

	return e, nil
}
