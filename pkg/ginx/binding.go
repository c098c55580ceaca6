package ginx

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/adshelf/pkg/apierror"
)

// bindArgs 绑定请求参数到 args 结构体
func bindArgs(ctx *gin.Context, args any) error {
	switch contentType := ctx.ContentType(); {
	case contentType == gin.MIMEMultipartPOSTForm || contentType == gin.MIMEPOSTForm:
		if err := ctx.ShouldBind(args); err != nil {
			return err
		}
	case ctx.Request.ContentLength != 0:
		if err := ctx.ShouldBindJSON(args); err != nil {
			return err
		}
	default:
		if err := ctx.ShouldBindQuery(args); err != nil {
			return err
		}
	}

	if len(ctx.Params) > 0 {
		return ctx.ShouldBindUri(args)
	}
	return nil
}

// invalidArgs 将绑定或校验错误转换为 400 错误，已经是 apierror 的保持不变
func invalidArgs(err error) error {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return apierror.WrapError(apierror.ErrInvalidParameter, err.Error(), err)
}
