// Package apierror 提供带错误码的 API 错误类型，用于所有服务的统一错误处理
//
// 错误响应格式：
//
//	{
//	    "errors": [
//	        {
//	            "code": "ResourceNotFound",
//	            "message": "ad ad-1f0c... not found"
//	        }
//	    ],
//	    "requestID": "3c1b3c2e-7a0e-4a4b-9d55-example"
//	}
//
// 使用示例：
//
//	// 创建错误
//	err := apierror.NewErrorWithStatus("ResourceNotFound", "ad not found", http.StatusNotFound)
//
//	// 基于预定义错误包装原始错误
//	err = apierror.WrapError(apierror.ErrInternalError, "Failed to list tags", rawErr)
//
//	// 快捷构造
//	err = apierror.NotFound("tag %s not found", tagID)
//
// 预定义错误变量：
//
//   - ErrInvalidParameter: 参数校验失败（400）
//   - ErrUnauthorized: 未登录或凭证失效（401）
//   - ErrResourceNotFound: 资源不存在（404）
//   - ErrConflict: 资源冲突（409）
//   - ErrInternalError: 内部错误（500）
//   - ErrUploadFailed: 对象存储写入失败（502）
package apierror
