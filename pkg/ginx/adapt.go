package ginx

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
)

// Adapt2 适配无参数、只有返回值的 handler
func Adapt2[T any](fn func(*gin.Context) T) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result := fn(ctx)
		renderResponse(ctx, result)
	}
}

// Adapt3 适配无参数、有返回值和 error 的 handler
func Adapt3[T any](fn func(*gin.Context) (T, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, err := fn(ctx)
		if err != nil {
			renderError(ctx, http.StatusInternalServerError, err)
			return
		}
		renderResponse(ctx, result)
	}
}

// Adapt4 适配有参数、只有 error 的 handler
func Adapt4[T any](fn func(*gin.Context, *T) error) gin.HandlerFunc {
	var argsType T
	argsTypeValue := reflect.TypeOf(argsType)

	return func(ctx *gin.Context) {
		args, ok := prepareArgs(ctx, argsTypeValue)
		if !ok {
			return
		}

		if err := fn(ctx, args.(*T)); err != nil {
			renderError(ctx, http.StatusInternalServerError, err)
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}

// Adapt5 适配有参数、有返回值和 error 的 handler
func Adapt5[TArgs any, TResp any](fn func(*gin.Context, *TArgs) (TResp, error)) gin.HandlerFunc {
	var argsType TArgs
	argsTypeValue := reflect.TypeOf(argsType)

	return func(ctx *gin.Context) {
		args, ok := prepareArgs(ctx, argsTypeValue)
		if !ok {
			return
		}

		result, err := fn(ctx, args.(*TArgs))
		if err != nil {
			renderError(ctx, http.StatusInternalServerError, err)
			return
		}
		renderResponse(ctx, result)
	}
}

// prepareArgs 创建参数对象、绑定并校验，失败时已经写入 400 响应
func prepareArgs(ctx *gin.Context, argsType reflect.Type) (any, bool) {
	args := reflect.New(argsType).Interface()
	if err := bindArgs(ctx, args); err != nil {
		renderError(ctx, http.StatusBadRequest, invalidArgs(err))
		return nil, false
	}

	// 验证参数（如果实现了 IsValid 方法）
	if validator, ok := args.(interface{ IsValid() error }); ok {
		if err := validator.IsValid(); err != nil {
			renderError(ctx, http.StatusBadRequest, invalidArgs(err))
			return nil, false
		}
	}
	return args, true
}
