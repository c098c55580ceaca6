package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/adshelf/pkg/apierror"
)

// renderResponse 渲染 JSON 响应
func renderResponse(ctx *gin.Context, response any) {
	if response == nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	// 基本类型特殊处理
	switch v := response.(type) {
	case string:
		ctx.String(http.StatusOK, v)
		return
	case int, int64, uint, uint64, float64, bool:
		ctx.JSON(http.StatusOK, gin.H{"value": v})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// renderError 渲染错误响应
// *apierror.Error（包括被 %w 包装的）使用其中的状态码，其他错误使用 statusCode
func renderError(ctx *gin.Context, statusCode int, err error) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		ctx.JSON(apiErr.Status(), apierror.NewErrorResponse(RequestID(ctx), apiErr))
		return
	}

	var errorResp *apierror.ErrorResponse
	if errors.As(err, &errorResp) {
		if len(errorResp.Errors) > 0 && errorResp.Errors[0].HTTPStatus > 0 {
			statusCode = errorResp.Errors[0].HTTPStatus
		}
		ctx.JSON(statusCode, errorResp)
		return
	}

	ctx.JSON(statusCode, gin.H{"error": err.Error()})
}

// AbortWithError 中断请求并渲染错误，供中间件使用
func AbortWithError(ctx *gin.Context, err error) {
	renderError(ctx, http.StatusInternalServerError, err)
	ctx.Abort()
}
