package entity

// User 用户信息
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// SignUpRequest 注册请求
type SignUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignInRequest 登录请求
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignInResponse 登录响应
type SignInResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"` // Bearer
	ExpiresAt   string `json:"expiresAt"`
	User        *User  `json:"user"`
}

// SignOutResponse 注销响应
type SignOutResponse struct {
	Return bool `json:"return"`
}

// Session 已认证的会话，SessionID 即 token 的 jti
type Session struct {
	SessionID string
	UserID    string
	Email     string
	ExpiresAt int64 // unix 秒
}
