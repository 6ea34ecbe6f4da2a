package handler

import (
	"irma-verse/internal/service"
	"irma-verse/pkg/jwt"
	"irma-verse/pkg/response"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	service *service.FriendshipService
}

func NewFriendHandler(s *service.FriendshipService) *FriendHandler {
	return &FriendHandler{service: s}
}

type targetRequest struct {
	TargetID string `json:"targetId" binding:"required"`
}

// Request 发起好友申请
func (h *FriendHandler) Request(c *gin.Context) {
	var r targetRequest
	if !bindJSON(c, &r) {
		return
	}
	f, err := h.service.RequestFriendship(c.Request.Context(), jwt.GetUserID(c), r.TargetID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "friend request sent", f)
}

// Incoming 收到的待处理申请
func (h *FriendHandler) Incoming(c *gin.Context) {
	list, err := h.service.ListIncomingRequests(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, list)
}

// Withdraw 撤回自己发出的申请
func (h *FriendHandler) Withdraw(c *gin.Context) {
	var r targetRequest
	if !bindJSON(c, &r) {
		return
	}
	if err := h.service.RejectFriendship(c.Request.Context(), jwt.GetUserID(c), r.TargetID); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "friend request withdrawn", nil)
}

// Accept 接受好友申请
func (h *FriendHandler) Accept(c *gin.Context) {
	type req struct {
		RequesterID string `json:"requesterId" binding:"required"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	f, err := h.service.AcceptFriendship(c.Request.Context(), jwt.GetUserID(c), r.RequesterID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "friend request accepted", f)
}

// Decline 拒绝收到的申请，targetId 为申请人
func (h *FriendHandler) Decline(c *gin.Context) {
	var r targetRequest
	if !bindJSON(c, &r) {
		return
	}
	if err := h.service.DeclineFriendship(c.Request.Context(), jwt.GetUserID(c), r.TargetID); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "friend request rejected", nil)
}

// List 好友列表
func (h *FriendHandler) List(c *gin.Context) {
	list, err := h.service.ListFriends(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, list)
}

// Mutual 与指定用户的共同好友
func (h *FriendHandler) Mutual(c *gin.Context) {
	list, err := h.service.ListMutualFriends(c.Request.Context(), jwt.GetUserID(c), c.Param("userId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, list)
}

// Unfriend 删除好友
func (h *FriendHandler) Unfriend(c *gin.Context) {
	if err := h.service.Unfriend(c.Request.Context(), jwt.GetUserID(c), c.Param("userId")); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "friend removed", nil)
}
