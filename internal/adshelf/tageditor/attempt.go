package tageditor

import (
	"context"
)

// Result 一次后端写入的结果
type Result struct {
	Err error
}

// OK 写入是否成功
func (r Result) OK() bool {
	return r.Err == nil
}

// Attempt 执行一次后端写入
type Attempt func(ctx context.Context) Result

// attemptOf 把返回 error 的函数包装成 Attempt
func attemptOf(fn func(ctx context.Context) error) Attempt {
	return func(ctx context.Context) Result {
		return Result{Err: fn(ctx)}
	}
}

// optimistic 先应用本地修改，写入失败时执行补偿
func optimistic(ctx context.Context, apply func(), attempt Attempt, compensate func()) Result {
	apply()
	res := attempt(ctx)
	if !res.OK() {
		compensate()
	}
	return res
}
