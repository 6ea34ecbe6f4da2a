package handler

import (
	"time"

	"irma-verse/internal/model"
	"irma-verse/internal/service"
	"irma-verse/pkg/jwt"
	"irma-verse/pkg/logger"
	"irma-verse/pkg/redis"
	"irma-verse/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	service  *service.UserService
	jwtSvc   *jwt.JWTService
	presence service.PresenceChecker
}

func NewUserHandler(s *service.UserService, jwtSvc *jwt.JWTService, presence service.PresenceChecker) *UserHandler {
	return &UserHandler{service: s, jwtSvc: jwtSvc, presence: presence}
}

type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register 用户注册，成功后直接登录
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Name     string `json:"name" binding:"required,max=128"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6,max=72"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	user, token, err := h.service.Register(c.Request.Context(), r.Name, r.Email, r.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.jwtSvc.SetSessionCookie(c, token)
	response.SuccessWithMessage(c, "registered", &authResponse{User: user, Token: token})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	user, token, err := h.service.Login(c.Request.Context(), r.Email, r.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.jwtSvc.SetSessionCookie(c, token)
	response.SuccessWithMessage(c, "logged in", &authResponse{User: user, Token: token})
}

// Logout 吊销会话并清除Cookie；吊销失败时仍清除Cookie
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), jwt.GetClaims(c)); err != nil {
		logger.Warn("吊销会话失败", zap.String("user_id", jwt.GetUserID(c)), zap.Error(err))
	}
	h.jwtSvc.ClearSessionCookie(c)
	response.SuccessWithMessage(c, "logged out", nil)
}

// Me 当前用户资料
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.GetProfile(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateMe 修改当前用户资料，未提供的字段保持不变
func (h *UserHandler) UpdateMe(c *gin.Context) {
	type req struct {
		Name    *string `json:"name" binding:"omitempty,max=128"`
		Phone   *string `json:"phone" binding:"omitempty,max=32,phone"`
		Address *string `json:"address" binding:"omitempty,max=255"`
		Bio     *string `json:"bio" binding:"omitempty,max=1000"`
		Avatar  *string `json:"avatar" binding:"omitempty,max=255"`
		Class   *string `json:"class" binding:"omitempty,max=64"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	user, err := h.service.UpdateProfile(c.Request.Context(), jwt.GetUserID(c), service.ProfileInput{
		Name:    r.Name,
		Phone:   r.Phone,
		Address: r.Address,
		Bio:     r.Bio,
		Avatar:  r.Avatar,
		Class:   r.Class,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "profile updated", user)
}

// Presence 检查指定用户是否在线
func (h *UserHandler) Presence(c *gin.Context) {
	userID := c.Param("userId")
	online := h.presence != nil && h.presence.IsOnline(userID)
	result := gin.H{
		"userId": userID,
		"online": online,
	}

	// 多实例部署时以Redis中的记录为准
	if redis.Enabled() {
		presence, err := redis.GetUserPresence(c.Request.Context(), userID)
		if err != nil {
			logger.Warn("获取用户在线信息失败", zap.String("user_id", userID), zap.Error(err))
		} else if presence != nil {
			result["online"] = true
			result["lastSeen"] = presence.LastSeen.Format(time.RFC3339)
		}
	}
	response.Success(c, result)
}
