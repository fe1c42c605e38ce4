package auth

import "github.com/golang-jwt/jwt/v5"

// ClaimsKey 是用于在 gin.Context 中存储和检索 Claims 的键。
const ClaimsKey = "user_claims"

// CustomClaims 定义了 JWT 的自定义 Claims。
// SessionID 把令牌绑定到签发时的会话，会话结束后令牌随之失效。
type CustomClaims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
