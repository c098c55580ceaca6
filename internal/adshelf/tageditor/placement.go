package tageditor

import (
	"math"

	"github.com/jimyag/adshelf/internal/adshelf/entity"
)

// 弹窗尺寸，单位像素
const (
	PopupWidth  = 280
	PopupHeight = 400
	anchorGap   = 8
	edgePadding = 16
)

// Place 计算弹窗位置
// 默认放在锚点右下方；超出右边界时向左收回；超出下边界且上方空间更大时翻到锚点上方
func Place(anchor entity.Rect, viewport entity.Size) entity.Placement {
	left := anchor.Left
	top := anchor.Bottom + anchorGap
	flipped := false

	if left+PopupWidth > viewport.Width-edgePadding {
		left = math.Max(edgePadding, viewport.Width-PopupWidth-edgePadding)
	}

	if top+PopupHeight > viewport.Height-edgePadding {
		if anchor.Top > viewport.Height-anchor.Bottom {
			top = math.Max(edgePadding, anchor.Top-PopupHeight-anchorGap)
			flipped = true
		}
	}

	return entity.Placement{
		Top:     top,
		Left:    left,
		Width:   PopupWidth,
		Height:  PopupHeight,
		Flipped: flipped,
	}
}
