// internal/app/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/binary-blogs/binary-blogs/internal/pkg/auth"
	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/response"
)

// TokenParser 解析访问令牌
type TokenParser interface {
	ParseAccessToken(ctx context.Context, accessToken string) (*auth.CustomClaims, error)
}

type Middleware struct {
	tokens TokenParser
}

func NewMiddleware(tokens TokenParser) *Middleware {
	return &Middleware{tokens: tokens}
}

// bearerToken 从 Authorization 头取出 Bearer 令牌
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// JWTAuth 是一个强制性的JWT认证中间件
func (m *Middleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Header.Get("Authorization") == "" {
			response.Fail(c, http.StatusUnauthorized, "请求未携带Token，无权限访问")
			c.Abort()
			return
		}
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "Token格式不正确")
			c.Abort()
			return
		}

		claims, err := m.tokens.ParseAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			log.Printf("[JWTAuth] JWT token解析失败: %v", err)
			if errors.Is(err, constant.ErrSessionEnded) {
				response.Fail(c, http.StatusUnauthorized, "会话已结束，请重新登录")
			} else {
				response.Fail(c, http.StatusUnauthorized, "无效或过期的Token")
			}
			c.Abort()
			return
		}

		c.Set(auth.ClaimsKey, claims)
		c.Next()
	}
}

// JWTAuthOptional 是一个可选的JWT认证中间件。没有Token时按游客放行，Token无效时返回401。
func (m *Middleware) JWTAuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := m.tokens.ParseAccessToken(c.Request.Context(), tokenString)
		if err != nil {
			log.Printf("[JWTAuthOptional] Token解析失败: %v", err)
			response.Fail(c, http.StatusUnauthorized, "Token已失效")
			c.Abort()
			return
		}

		c.Set(auth.ClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom 从上下文读取认证信息，游客返回 nil
func ClaimsFrom(c *gin.Context) *auth.CustomClaims {
	v, exists := c.Get(auth.ClaimsKey)
	if !exists {
		return nil
	}
	claims, _ := v.(*auth.CustomClaims)
	return claims
}
