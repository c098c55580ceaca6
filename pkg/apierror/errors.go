package apierror

import (
	"fmt"
	"net/http"
)

var (
	// ErrInvalidParameter 请求参数缺失或不合法
	ErrInvalidParameter = &Error{
		Code:       "InvalidParameter",
		Message:    "One or more request parameters are missing or invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrUnauthorized 未登录、凭证过期或已注销
	ErrUnauthorized = &Error{
		Code:       "Unauthorized",
		Message:    "Authentication is required to access this resource.",
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrResourceNotFound 请求的资源不存在
	ErrResourceNotFound = &Error{
		Code:       "ResourceNotFound",
		Message:    "The requested resource does not exist.",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrConflict 资源已存在
	ErrConflict = &Error{
		Code:       "Conflict",
		Message:    "The resource already exists.",
		HTTPStatus: http.StatusConflict,
	}

	// ErrInternalError 发生了内部错误
	ErrInternalError = &Error{
		Code:       "InternalError",
		Message:    "An internal error has occurred. Retry your request.",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrUploadFailed 对象存储写入失败，已上传的文件不会回滚
	ErrUploadFailed = &Error{
		Code:       "UploadFailed",
		Message:    "The media upload has failed.",
		HTTPStatus: http.StatusBadGateway,
	}
)

// InvalidParameter 创建 400 错误
func InvalidParameter(format string, args ...any) *Error {
	return WrapError(ErrInvalidParameter, fmt.Sprintf(format, args...), nil)
}

// NotFound 创建 404 错误
func NotFound(format string, args ...any) *Error {
	return WrapError(ErrResourceNotFound, fmt.Sprintf(format, args...), nil)
}

// Unauthorized 创建 401 错误
func Unauthorized(format string, args ...any) *Error {
	return WrapError(ErrUnauthorized, fmt.Sprintf(format, args...), nil)
}
