package redis

import (
	"context"
	"fmt"
	"time"
)

// RevokedSessionKeyPrefix 已吊销会话key前缀
const RevokedSessionKeyPrefix = "irma:session:revoked:"

// SessionStore 基于Redis的会话吊销存储，key 在令牌原定过期时自动删除
type SessionStore struct{}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Revoke 吊销会话
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if err := client.Set(ctx, RevokedSessionKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("吊销会话失败: %w", err)
	}
	return nil
}

// IsRevoked 会话是否已吊销
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if client == nil {
		return false, fmt.Errorf("redis客户端未初始化")
	}
	n, err := client.Exists(ctx, RevokedSessionKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("查询会话吊销状态失败: %w", err)
	}
	return n > 0, nil
}
