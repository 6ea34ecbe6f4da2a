package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"irma-verse/config"
	"irma-verse/pkg/jwt"
	"irma-verse/pkg/logger"
	"irma-verse/pkg/redis"
	"irma-verse/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域，会话校验在升级前完成
	},
}

// Handler WebSocket入口
type Handler struct {
	manager *Manager
	jwtSvc  *jwt.JWTService
	cfg     config.WebSocketConfig
}

func NewHandler(manager *Manager, jwtSvc *jwt.JWTService, cfg config.WebSocketConfig) *Handler {
	return &Handler{manager: manager, jwtSvc: jwtSvc, cfg: cfg}
}

// Serve Gin路由处理函数，token 取自 query 参数或会话cookie
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = h.jwtSvc.TokenFromRequest(c)
	}
	if token == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	claims, err := h.jwtSvc.Authenticate(c.Request.Context(), token)
	if err != nil {
		response.Unauthorized(c, "unauthorized")
		return
	}
	userID := claims.Subject

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket升级失败", zap.String("user_id", userID), zap.Error(err))
		return
	}

	client := NewClient(userID, conn)
	h.manager.AddClient(client)
	h.setPresence(userID, true)
	logger.Info("websocket已连接", zap.String("user_id", userID))

	defer func() {
		if h.manager.RemoveClient(client) {
			h.setPresence(userID, false)
		}
		_ = conn.Close()
		logger.Info("websocket已断开", zap.String("user_id", userID))
	}()

	go h.writePump(client)
	h.readPump(client)
}

// writePump 发送队列消息并定时ping
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = client.Conn.Close()
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				_ = client.Conn.Close()
				return
			}
		}
	}
}

// readPump 读取心跳，超时未收到任何读事件则断开
func (h *Handler) readPump(client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Type == "heartbeat" && redis.Enabled() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = redis.RefreshUserPresence(ctx, client.UserID)
			cancel()
		}
	}
}

func (h *Handler) setPresence(userID string, online bool) {
	if !redis.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var err error
	if online {
		err = redis.SetUserOnline(ctx, userID)
	} else {
		err = redis.RemoveUserPresence(ctx, userID)
	}
	if err != nil {
		logger.Warn("更新在线状态失败", zap.String("user_id", userID), zap.Bool("online", online), zap.Error(err))
	}
}
