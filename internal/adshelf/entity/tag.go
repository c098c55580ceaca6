// Package entity 定义业务实体
package entity

// Tag 标签信息
type Tag struct {
	ID        string `json:"id"`         // 标签 ID: tag-{sonyflake}
	Name      string `json:"name"`       // 标签名称
	Color     string `json:"color"`      // CSS 颜色
	CreatedAt string `json:"created_at"` // 创建时间
}

// 标签调色板
const (
	ColorDefault = "#F1F0EE"
	ColorGray    = "#E4E3DF"
	ColorBrown   = "#D7C9C2"
	ColorOrange  = "#F3D8C5"
	ColorYellow  = "#F2E59C"
	ColorGreen   = "#D9EAD7"
	ColorBlue    = "#D5E3F1"
	ColorPurple  = "#E5D8EF"
	ColorPink    = "#F4DAEA"
	ColorRed     = "#F7D9D4"
)

// TagColor 调色板中的一种颜色
type TagColor struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TagPalette 标签可选颜色，顺序固定
var TagPalette = []TagColor{
	{Name: "Default", Value: ColorDefault},
	{Name: "Gray", Value: ColorGray},
	{Name: "Brown", Value: ColorBrown},
	{Name: "Orange", Value: ColorOrange},
	{Name: "Yellow", Value: ColorYellow},
	{Name: "Green", Value: ColorGreen},
	{Name: "Blue", Value: ColorBlue},
	{Name: "Purple", Value: ColorPurple},
	{Name: "Pink", Value: ColorPink},
	{Name: "Red", Value: ColorRed},
}

// ListTagsRequest 列出标签请求
type ListTagsRequest struct{}

// ListTagsResponse 列出标签响应
type ListTagsResponse struct {
	Tags    []Tag      `json:"tags"`
	Palette []TagColor `json:"palette"`
}

// CreateTagRequest 创建标签请求
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"` // 标签名称
	Color string `json:"color"`                   // 为空时使用默认颜色
}

// CreateTagResponse 创建标签响应
type CreateTagResponse struct {
	Tag *Tag `json:"tag"`
}

// UpdateTagRequest 重命名或修改颜色，空字段保持不变
type UpdateTagRequest struct {
	TagID string `json:"tagID" binding:"required"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UpdateTagResponse 更新标签响应
type UpdateTagResponse struct {
	Tag *Tag `json:"tag"`
}

// DeleteTagRequest 删除标签请求
type DeleteTagRequest struct {
	TagID string `json:"tagID" binding:"required"`
}

// DeleteTagResponse 删除标签响应
type DeleteTagResponse struct {
	Return bool `json:"return"`
}

// AdTagRequest 关联或取消关联标签
type AdTagRequest struct {
	AdID  string `json:"adID" binding:"required"`
	TagID string `json:"tagID" binding:"required"`
}

// AdTagResponse 关联操作后广告当前的标签
type AdTagResponse struct {
	AdID string `json:"adID"`
	Tags []Tag  `json:"tags"`
}

// ListAdTagsRequest 列出广告标签请求
type ListAdTagsRequest struct {
	AdID string `json:"adID" binding:"required"`
}
