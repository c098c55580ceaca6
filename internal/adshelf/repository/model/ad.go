package model

import (
	"time"
)

// Ad 抓取到的广告记录
type Ad struct {
	ID                     string    `gorm:"primaryKey;type:text;column:id" json:"id"` // ad-{uuid}
	LibraryID              *string   `gorm:"type:text;column:library_id" json:"library_id"`
	StartedRunningOn       *string   `gorm:"type:text;column:started_running_on" json:"started_running_on"` // 原样保存的日期文本
	AdvertiserName         *string   `gorm:"type:text;column:advertiser_name" json:"advertiser_name"`
	AdvertiserProfileImage *string   `gorm:"type:text;column:advertiser_profile_image" json:"advertiser_profile_image"`
	AdvertiserProfileLink  *string   `gorm:"type:text;column:advertiser_profile_link" json:"advertiser_profile_link"`
	AdText                 *string   `gorm:"type:text;column:ad_text" json:"ad_text"`
	MediaType              *string   `gorm:"type:text;column:media_type" json:"media_type"` // image, video
	MediaURL               *string   `gorm:"type:text;column:media_url" json:"media_url"`
	CapturedAt             time.Time `gorm:"not null;index:idx_facebook_ads_captured_at;column:captured_at" json:"captured_at"`
}

// TableName 指定表名
func (Ad) TableName() string {
	return "facebook_ads"
}
