package jwt

import (
	"net/http"
	"strings"

	"irma-verse/pkg/logger"
	"irma-verse/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUserIDKey 用户ID在gin.Context中的键名
	ContextUserIDKey = "user_id"
	// ContextUserNameKey 用户名在gin.Context中的键名
	ContextUserNameKey = "user_name"
	// ContextUserRoleKey 用户角色在gin.Context中的键名
	ContextUserRoleKey = "user_role"
	// ContextClaimsKey JWT声明在gin.Context中的键名
	ContextClaimsKey = "jwt_claims"
)

// TokenFromRequest 依次从会话Cookie、Authorization: Bearer 头中读取令牌
func (s *JWTService) TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(s.cookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthMiddleware 会话认证中间件
// 验证令牌并将用户信息存入gin.Context，无有效会话一律返回401
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := s.TokenFromRequest(c)
		if tokenString == "" {
			response.Unauthorized(c, "unauthorized")
			return
		}

		claims, err := s.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			logger.Debug("会话验证失败",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			response.Unauthorized(c, "unauthorized")
			return
		}

		c.Set(ContextUserIDKey, claims.Subject)
		c.Set(ContextUserNameKey, claimString(claims, "name"))
		c.Set(ContextUserRoleKey, claimString(claims, "role"))
		c.Set(ContextClaimsKey, claims)

		c.Next()
	}
}

// RequireRole 要求当前用户具有指定角色之一，需在 AuthMiddleware 之后使用
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "forbidden")
	}
}

// SetSessionCookie 写入会话Cookie
func (s *JWTService) SetSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, token, int(s.expireAfter.Seconds()), "/", "", s.cookieSecure, true)
}

// ClearSessionCookie 清除会话Cookie
func (s *JWTService) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, "", -1, "/", "", s.cookieSecure, true)
}

func claimString(claims *CustomClaims, key string) string {
	if claims.Data == nil {
		return ""
	}
	if v, ok := claims.Data[key].(string); ok {
		return v
	}
	return ""
}

// GetUserID 从gin.Context中获取用户ID
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// GetUserName 从gin.Context中获取用户名
func GetUserName(c *gin.Context) string {
	return c.GetString(ContextUserNameKey)
}

// GetUserRole 从gin.Context中获取用户角色
func GetUserRole(c *gin.Context) string {
	return c.GetString(ContextUserRoleKey)
}

// GetClaims 从gin.Context中获取JWT声明
func GetClaims(c *gin.Context) *CustomClaims {
	if claims, exists := c.Get(ContextClaimsKey); exists {
		if cc, ok := claims.(*CustomClaims); ok {
			return cc
		}
	}
	return nil
}
