package entity

// FeedState 广告列表的当前状态
type FeedState struct {
	FeedID       string   `json:"feedID"`
	Items        []Ad     `json:"items"`
	HasMore      bool     `json:"hasMore"`
	Loading      bool     `json:"loading"`
	Error        string   `json:"error,omitempty"`
	Total        int64    `json:"total"`
	Page         int      `json:"page"`
	Search       string   `json:"search"`
	PendingQuery string   `json:"pendingQuery,omitempty"` // 还在防抖窗口内的输入
	SelectedTags []string `json:"selectedTags"`
}

// OpenFeedRequest 打开广告列表
type OpenFeedRequest struct {
	Search string   `json:"search"`
	TagIDs []string `json:"tagIDs"`
}

// FeedRequest 针对已打开列表的操作
type FeedRequest struct {
	FeedID string `json:"feedID" binding:"required"`
}

// SearchFeedRequest 修改搜索文本，Immediate 为 true 时跳过防抖
type SearchFeedRequest struct {
	FeedID    string `json:"feedID" binding:"required"`
	Query     string `json:"query"`
	Immediate bool   `json:"immediate"`
}

// ToggleFeedTagRequest 切换标签筛选
type ToggleFeedTagRequest struct {
	FeedID string `json:"feedID" binding:"required"`
	TagID  string `json:"tagID" binding:"required"`
}

// CloseFeedResponse 关闭列表响应
type CloseFeedResponse struct {
	Return bool `json:"return"`
}
