package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceData 在线状态数据
type PresenceData struct {
	UserID   string    `json:"user_id"`
	Status   string    `json:"status"` // online/offline
	LastSeen time.Time `json:"last_seen"`
}

// 在线状态相关常量
const (
	PresenceKeyPrefix = "irma:presence:user:" // 用户在线状态key前缀
	OnlineUsersKey    = "irma:online:users"   // 在线用户集合key
	PresenceTTL       = 2 * time.Minute       // 在线状态TTL（约两倍心跳周期）
)

func presenceKey(userID string) string {
	return PresenceKeyPrefix + userID
}

// SetUserOnline 标记用户在线
func SetUserOnline(ctx context.Context, userID string) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	data, err := json.Marshal(PresenceData{
		UserID:   userID,
		Status:   "online",
		LastSeen: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("序列化在线状态失败: %w", err)
	}

	pipe := client.TxPipeline()
	pipe.Set(ctx, presenceKey(userID), data, PresenceTTL)
	pipe.SAdd(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}
	return nil
}

// RefreshUserPresence 刷新用户在线状态（延长TTL）
func RefreshUserPresence(ctx context.Context, userID string) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	ok, err := client.Expire(ctx, presenceKey(userID), PresenceTTL).Result()
	if err != nil {
		return fmt.Errorf("刷新用户在线状态失败: %w", err)
	}
	if !ok {
		return SetUserOnline(ctx, userID)
	}
	return nil
}

// RemoveUserPresence 移除用户在线状态
func RemoveUserPresence(ctx context.Context, userID string) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	pipe := client.TxPipeline()
	pipe.Del(ctx, presenceKey(userID))
	pipe.SRem(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("移除用户在线状态失败: %w", err)
	}
	return nil
}

// IsUserOnline 检查用户是否在线
func IsUserOnline(ctx context.Context, userID string) (bool, error) {
	if client == nil {
		return false, fmt.Errorf("redis客户端未初始化")
	}
	exists, err := client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("检查用户在线状态失败: %w", err)
	}
	return exists > 0, nil
}

// GetUserPresence 获取用户在线状态，不在线时返回 nil
func GetUserPresence(ctx context.Context, userID string) (*PresenceData, error) {
	if client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}
	data, err := client.Get(ctx, presenceKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("获取用户在线状态失败: %w", err)
	}

	var presence PresenceData
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("反序列化在线状态失败: %w", err)
	}
	return &presence, nil
}

// CleanExpiredPresence 清理在线集合中已过期的用户
func CleanExpiredPresence(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	members, err := client.SMembers(ctx, OnlineUsersKey).Result()
	if err != nil {
		return fmt.Errorf("获取在线用户列表失败: %w", err)
	}
	for _, userID := range members {
		exists, err := client.Exists(ctx, presenceKey(userID)).Result()
		if err != nil {
			continue
		}
		if exists == 0 {
			client.SRem(ctx, OnlineUsersKey, userID)
		}
	}
	return nil
}
