// Package ginx 提供 gin 框架的 handler 适配器，支持自动参数绑定和响应处理
//
// 请求参数按以下规则绑定：
//   - multipart/form-data、application/x-www-form-urlencoded 使用表单绑定（支持 *multipart.FileHeader 字段）
//   - 有请求体时使用 JSON 绑定
//   - 没有请求体时使用 Query 绑定
//   - 路由中存在路径参数时，额外绑定 URI 参数
//
// 参数如果实现了 IsValid() error，会在调用 handler 前执行。
// handler 返回的错误如果是 *apierror.Error，使用其中的 HTTP 状态码和错误码渲染。
//
// 支持的 handler 函数签名：
//
//	// 有参数，有返回值，有 error
//	func(c *gin.Context, args *Args) (resp, error)
//
//	// 有参数，只有 error
//	func(c *gin.Context, args *Args) error
//
//	// 无参数，有返回值，有 error
//	func(c *gin.Context) (resp, error)
//
//	// 无参数，只有返回值
//	func(c *gin.Context) resp
//
// 使用示例：
//
//	router.POST("/api/tags/create", ginx.Adapt5(func(c *gin.Context, args *CreateTagRequest) (*Tag, error) {
//	    return tagService.CreateTag(c, args)
//	}))
package ginx
