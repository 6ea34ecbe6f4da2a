package handler

import (
	"bytes"
	"net/http"
	"time"

	"irma-verse/internal/service"
	"irma-verse/pkg/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MemberHandler struct {
	service *service.DirectoryService
}

func NewMemberHandler(s *service.DirectoryService) *MemberHandler {
	return &MemberHandler{service: s}
}

// Members 成员列表（不含指导老师）
func (h *MemberHandler) Members(c *gin.Context) {
	list, err := h.service.ListMembers(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, list)
}

// Instructors 指导老师列表
func (h *MemberHandler) Instructors(c *gin.Context) {
	list, err := h.service.ListInstructors(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, list)
}

// Export 导出成员名册（管理员）
func (h *MemberHandler) Export(c *gin.Context) {
	// 先写入缓冲区，失败时仍可返回JSON错误
	var buf bytes.Buffer
	if err := h.service.ExportMembers(c.Request.Context(), &buf); err != nil {
		response.FromError(c, err)
		return
	}
	filename := "anggota-" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
