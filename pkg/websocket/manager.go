package websocket

import (
	"encoding/json"
	"sync"

	"irma-verse/pkg/logger"
	"irma-verse/pkg/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client 代表一个WebSocket连接的用户
// UserID: 用户ID
// Conn: WebSocket连接
// Send: 发送消息的通道

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient 创建客户端，Send 缓冲256条
func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
}

// Manager 管理所有在线用户的WebSocket连接
// 每个用户保留最新的一条连接，旧连接的发送通道会被关闭

type Manager struct {
	clients map[string]*Client
	lock    sync.RWMutex
}

// NewManager 创建连接管理器
func NewManager() *Manager {
	return &Manager{clients: make(map[string]*Client)}
}

// AddClient 添加新连接，替换同一用户的旧连接
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if old, ok := m.clients[client.UserID]; ok && old != client {
		close(old.Send)
	} else {
		metrics.WebsocketConnected()
	}
	m.clients[client.UserID] = client
}

// RemoveClient 移除连接；client 已被替换时不做任何事
func (m *Manager) RemoveClient(client *Client) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	current, ok := m.clients[client.UserID]
	if !ok || current != client {
		return false
	}
	close(current.Send)
	delete(m.clients, client.UserID)
	metrics.WebsocketDisconnected()
	return true
}

// SendToUser 推送原始消息，用户不在线或缓冲已满时返回 false
func (m *Manager) SendToUser(userID string, msg []byte) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	client, ok := m.clients[userID]
	if !ok {
		return false
	}
	select {
	case client.Send <- msg:
		return true
	default:
		return false
	}
}

// NotifyUser 以JSON推送事件，离线用户直接丢弃
func (m *Manager) NotifyUser(userID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("序列化推送事件失败", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if !m.SendToUser(userID, data) {
		logger.Debug("用户不在线，事件未推送", zap.String("user_id", userID))
	}
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID string) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// OnlineCount 当前连接数
func (m *Manager) OnlineCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}
