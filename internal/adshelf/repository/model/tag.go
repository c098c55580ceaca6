package model

import (
	"time"
)

// Tag 标签表，所有广告共享
type Tag struct {
	ID        string    `gorm:"primaryKey;type:text;column:id" json:"id"` // tag-{sonyflake}
	Name      string    `gorm:"type:text;not null;index:idx_tags_name;column:name" json:"name"`
	Color     string    `gorm:"type:text;not null;column:color" json:"color"` // CSS 颜色
	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

// TableName 指定表名
func (Tag) TableName() string {
	return "tags"
}

// AdTag 广告与标签的关联表，没有外键级联
type AdTag struct {
	AdID  string `gorm:"primaryKey;type:text;column:ad_id" json:"ad_id"`
	TagID string `gorm:"primaryKey;type:text;index:idx_ad_tags_tag_id;column:tag_id" json:"tag_id"`
	// CreatedAt 关联时间，广告的标签按它排序；旧数据为 NULL
	CreatedAt *time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName 指定表名
func (AdTag) TableName() string {
	return "ad_tags"
}
