package auth

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/binary-blogs/binary-blogs/internal/pkg/auth"
	"github.com/binary-blogs/binary-blogs/internal/pkg/utils"
	"github.com/binary-blogs/binary-blogs/pkg/constant"
	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
)

// DefaultTokenTTL 令牌默认有效期
const DefaultTokenTTL = 24 * time.Hour

// SessionSource 提供当前有效的会话 ID
type SessionSource interface {
	ActiveSessionID() string
}

// TokenService 签发和校验会话令牌
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	sessions SessionSource
}

// NewTokenService 创建令牌服务。secret 为空时生成一个进程内随机密钥，重启后旧令牌全部失效。
func NewTokenService(secret string, ttl time.Duration, sessions SessionSource) (*TokenService, error) {
	if secret == "" {
		generated, err := utils.RandomSecret(32)
		if err != nil {
			return nil, fmt.Errorf("生成 JWT 密钥失败: %w", err)
		}
		log.Printf("[TokenService] 未配置 JWT 密钥，已生成随机密钥")
		secret = generated
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, sessions: sessions}, nil
}

// GenerateSessionToken 为一个已登录的会话签发令牌
func (s *TokenService) GenerateSessionToken(ctx context.Context, session model.Session) (*model.LoginResponse, error) {
	if !session.IsAuthenticated || session.User == nil {
		return nil, constant.ErrUnauthorized
	}
	token, expiresAt, err := auth.GenerateToken(session.User.ID, session.SessionID, string(session.User.Role), s.ttl, s.secret)
	if err != nil {
		return nil, err
	}
	user := *session.User
	return &model.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.UnixMilli(),
		User:        &user,
	}, nil
}

// ParseAccessToken 解析令牌，并要求它属于当前仍然有效的会话
func (s *TokenService) ParseAccessToken(ctx context.Context, accessToken string) (*auth.CustomClaims, error) {
	claims, err := auth.ParseToken(accessToken, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrInvalidToken, err)
	}
	active := s.sessions.ActiveSessionID()
	if active == "" || claims.SessionID != active {
		return nil, constant.ErrSessionEnded
	}
	return claims, nil
}
