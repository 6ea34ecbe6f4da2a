package handler

import (
	"irma-verse/pkg/apperr"
	"irma-verse/pkg/response"

	"github.com/gin-gonic/gin"
)

// bindJSON 绑定并校验请求体，失败时已写出400响应
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		response.FromError(c, apperr.Wrap(err, apperr.KindValidation, "invalid payload: "+err.Error()))
		return false
	}
	return true
}
