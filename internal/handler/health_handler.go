package handler

import (
	"context"
	"net/http"
	"time"

	dbPkg "irma-verse/pkg/db"
	"irma-verse/pkg/redis"
	"irma-verse/pkg/response"

	"github.com/gin-gonic/gin"
)

// Health 健康检查，数据库不可用时返回503
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := dbPkg.HealthCheck(); err != nil {
		dbStatus = "down"
	}
	redisStatus := "disabled"
	if redis.Enabled() {
		redisStatus = "ok"
		if err := redis.HealthCheck(ctx); err != nil {
			redisStatus = "down"
		}
	}

	data := gin.H{
		"database": dbStatus,
		"redis":    redisStatus,
		"time":     time.Now().Format(time.RFC3339),
	}
	if dbStatus != "ok" {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "unhealthy",
			Data:    data,
		})
		return
	}
	response.Success(c, data)
}
