package entity

import (
	"mime/multipart"
)

// 媒体类型
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Ad 广告信息，可空字段为空字符串
type Ad struct {
	ID                     string `json:"id"` // 广告 ID: ad-{uuid}
	LibraryID              string `json:"library_id,omitempty"`
	StartedRunningOn       string `json:"started_running_on,omitempty"`
	AdvertiserName         string `json:"advertiser_name,omitempty"`
	AdvertiserProfileImage string `json:"advertiser_profile_image,omitempty"`
	AdvertiserProfileLink  string `json:"advertiser_profile_link,omitempty"`
	AdText                 string `json:"ad_text,omitempty"`    // 保留换行
	MediaType              string `json:"media_type,omitempty"` // image, video
	MediaURL               string `json:"media_url,omitempty"`
	CapturedAt             string `json:"captured_at"`
	Tags                   []Tag  `json:"tags"` // 已按标签缓存校正
}

// CreateAdRequest 创建广告请求，multipart 表单
type CreateAdRequest struct {
	AdvertiserName        string                `form:"advertiser_name"`
	AdText                string                `form:"ad_text"`
	LibraryID             string                `form:"library_id"`
	StartedRunningOn      string                `form:"started_running_on"`
	AdvertiserProfileLink string                `form:"advertiser_profile_link"`
	ProfileImage          *multipart.FileHeader `form:"profile_image"`
	Media                 *multipart.FileHeader `form:"media"`
}

// CreateAdResponse 创建广告响应
type CreateAdResponse struct {
	Ad *Ad `json:"ad"`
}

// DescribeAdRequest 查询单个广告
type DescribeAdRequest struct {
	AdID string `json:"adID" binding:"required"`
}

// DescribeAdResponse 查询单个广告响应
type DescribeAdResponse struct {
	Ad *Ad `json:"ad"`
}

// DeleteAdRequest 删除广告请求
type DeleteAdRequest struct {
	AdID string `json:"adID" binding:"required"`
}

// DeleteAdResponse 删除广告响应
type DeleteAdResponse struct {
	Return bool `json:"return"`
}

// Stats 控制台统计
type Stats struct {
	TotalAds  int64 `json:"totalAds"`
	TotalTags int64 `json:"totalTags"`
}
