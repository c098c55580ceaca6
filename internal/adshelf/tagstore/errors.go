package tagstore

import "errors"

// ErrClosed 会话已注销，缓存已关闭
var ErrClosed = errors.New("tag store closed")
