package handler

import (
	"irma-verse/internal/service"
	"irma-verse/pkg/jwt"
	"irma-verse/pkg/response"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *service.ChatService
}

func NewChatHandler(s *service.ChatService) *ChatHandler {
	return &ChatHandler{service: s}
}

// Threads 会话列表，?search= 过滤，?instructor= 指定首次打开时选中的会话
func (h *ChatHandler) Threads(c *gin.Context) {
	view, err := h.service.ListThreads(c.Request.Context(), jwt.GetUserID(c), c.Query("search"), c.Query("instructor"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, view)
}

// Select 切换当前会话
func (h *ChatHandler) Select(c *gin.Context) {
	thread, err := h.service.SelectThread(c.Request.Context(), jwt.GetUserID(c), c.Param("instructorId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, thread)
}

// Send 发送消息
func (h *ChatHandler) Send(c *gin.Context) {
	type req struct {
		Text string `json:"text" binding:"required,max=1000"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	msg, err := h.service.SendMessage(c.Request.Context(), jwt.GetUserID(c), c.Param("instructorId"), r.Text)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, msg)
}

// Reset 重建会话视图
func (h *ChatHandler) Reset(c *gin.Context) {
	view, err := h.service.Reset(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, view)
}
