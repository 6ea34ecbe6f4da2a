package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"irma-verse/config"
	"irma-verse/pkg/logger"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWTService 提供会话令牌的生成与校验
// 使用对称密钥 HS256，Subject 为用户ID，ID(jti) 用于吊销

type JWTService struct {
	secretKey    []byte        // 对称密钥
	issuer       string        // 签发者
	expireAfter  time.Duration // 过期时间
	cookieName   string        // 会话Cookie名称
	cookieSecure bool          // 仅HTTPS发送Cookie
	revocations  RevocationStore
}

// RevocationStore 已吊销会话的存储，未配置时不检查吊销
type RevocationStore interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// CustomClaims 自定义声明载荷
// Data 用于扩展非敏感业务字段（name、role）

type CustomClaims struct {
	Data map[string]interface{} `json:"data,omitempty"`
	jwtv5.RegisteredClaims
}

var ErrRevoked = errors.New("session has been revoked")

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:    []byte(cfg.Secret),
		issuer:       cfg.Issuer,
		expireAfter:  cfg.ExpireTime,
		cookieName:   cfg.CookieName,
		cookieSecure: cfg.CookieSecure,
	}
}

// WithRevocation 启用会话吊销检查
func (s *JWTService) WithRevocation(store RevocationStore) *JWTService {
	s.revocations = store
	return s
}

// ExpireAfter 令牌有效期
func (s *JWTService) ExpireAfter() time.Duration {
	return s.expireAfter
}

// GenerateToken 生成会话令牌
// extraData 将写入 Data 字段（仅存放非敏感信息）
func (s *JWTService) GenerateToken(userID string, extraData map[string]interface{}) (string, error) {
	if userID == "" {
		return "", errors.New("userID is required")
	}

	now := time.Now()

	claims := &CustomClaims{
		Data: extraData,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.expireAfter)),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// ValidateToken 校验签名、签发者与有效期并解析令牌
func (s *JWTService) ValidateToken(tokenString string) (*CustomClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}
	claims := &CustomClaims{}
	parsedToken, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			if token.Method != jwtv5.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwtv5.WithIssuer(s.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	if !parsedToken.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Authenticate 校验令牌并检查是否已吊销
// 吊销存储不可用时放行，只记录告警
func (s *JWTService) Authenticate(ctx context.Context, tokenString string) (*CustomClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			logger.Warn("检查会话吊销失败", zap.Error(err))
		} else if revoked {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

// Revoke 吊销会话直到其原定过期时间
func (s *JWTService) Revoke(ctx context.Context, claims *CustomClaims) error {
	if s.revocations == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := s.expireAfter
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}
