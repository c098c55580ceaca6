package entity

// TagEditorState 标签编辑弹窗的当前状态
type TagEditorState struct {
	EditorID      string `json:"editorID"`
	AdID          string `json:"adID"`
	Phase         string `json:"phase"` // closed, loading, ready
	Query         string `json:"query"`
	Options       []Tag  `json:"options"` // 过滤后的标签
	CreateOffered bool   `json:"createOffered"`
	PreviewColor  string `json:"previewColor"` // 新建标签将使用的颜色
	Highlighted   int    `json:"highlighted"`
	Attached      []Tag  `json:"attached"` // 按关联顺序
	Editing       string `json:"editing"`  // none, color_menu, renaming
	EditingTagID  string `json:"editingTagID,omitempty"`
	Error         string `json:"error,omitempty"`
}

// OpenTagEditorRequest 为广告打开标签编辑弹窗
type OpenTagEditorRequest struct {
	AdID string `json:"adID" binding:"required"`
}

// TagEditorRequest 针对已打开弹窗的操作
type TagEditorRequest struct {
	EditorID string `json:"editorID" binding:"required"`
}

// TagEditorQueryRequest 修改过滤文本
type TagEditorQueryRequest struct {
	EditorID string `json:"editorID" binding:"required"`
	Query    string `json:"query"`
}

// TagEditorKeyRequest 键盘事件：Down, Up, Enter, Backspace, Escape
type TagEditorKeyRequest struct {
	EditorID string `json:"editorID" binding:"required"`
	Key      string `json:"key" binding:"required"`
}

// TagEditorTagRequest 针对某个标签的操作
type TagEditorTagRequest struct {
	EditorID string `json:"editorID" binding:"required"`
	TagID    string `json:"tagID" binding:"required"`
}

// TagEditorCreateRequest 从弹窗创建标签，颜色为空时随机选择
type TagEditorCreateRequest struct {
	EditorID string `json:"editorID" binding:"required"`
	Name     string `json:"name"` // 为空时使用当前过滤文本
	Color    string `json:"color"`
}

// TagEditorRenameRequest 重命名标签
type TagEditorRenameRequest struct {
	EditorID string `json:"editorID" binding:"required"`
	TagID    string `json:"tagID" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// TagEditorRecolorRequest 修改标签颜色
type TagEditorRecolorRequest struct {
	EditorID string `json:"editorID" binding:"required"`
	TagID    string `json:"tagID" binding:"required"`
	Color    string `json:"color" binding:"required"`
}

// TagEditorDismissRequest 点击事件，Inside 表示点在弹窗或子菜单内
type TagEditorDismissRequest struct {
	EditorID string `json:"editorID" binding:"required"`
	Inside   bool   `json:"inside"`
}

// Rect 屏幕矩形，单位像素
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Size 视口大小
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PlaceTagEditorRequest 计算弹窗位置
type PlaceTagEditorRequest struct {
	Anchor   Rect `json:"anchor"`
	Viewport Size `json:"viewport"`
}

// Placement 弹窗位置
type Placement struct {
	Top     float64 `json:"top"`
	Left    float64 `json:"left"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Flipped bool    `json:"flipped"` // 在锚点上方
}
