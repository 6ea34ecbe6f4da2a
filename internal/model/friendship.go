package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendshipStatus 好友关系状态，规范值为大写
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "PENDING"
	FriendshipAccepted FriendshipStatus = "ACCEPTED"
	FriendshipRejected FriendshipStatus = "REJECTED"
)

var (
	ErrUnknownStatus = errors.New("unknown friendship status")
	ErrSelfFriend    = errors.New("requester and addressee must differ")
)

// ParseFriendshipStatus 大小写不敏感地解析状态
func ParseFriendshipStatus(s string) (FriendshipStatus, error) {
	switch st := FriendshipStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case FriendshipPending, FriendshipAccepted, FriendshipRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// PairKey 无序用户对的键：两个ID排序后以":"连接
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// Friendship 好友关系（有向请求）
// 同一无序用户对同时最多一行，由 pair_key 唯一索引保证
// 拒绝、撤回、删除好友均直接删除行，之后可重新申请

type Friendship struct {
	ID          string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	RequesterID string           `gorm:"type:varchar(36);not null;index;comment:申请人ID" json:"requesterId"`
	AddresseeID string           `gorm:"type:varchar(36);not null;index;comment:被申请人ID" json:"addresseeId"`
	PairKey     string           `gorm:"type:varchar(80);not null;uniqueIndex;comment:无序用户对" json:"-"`
	Status      FriendshipStatus `gorm:"type:varchar(16);not null;index;comment:关系状态" json:"status"`
	CreatedAt   time.Time        `gorm:"comment:创建时间" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"comment:更新时间" json:"updatedAt"`
}

func (Friendship) TableName() string { return "friendship" }

// BeforeCreate 生成UUID
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave 校验双方、计算 pair_key 并规范化状态
func (f *Friendship) BeforeSave(tx *gorm.DB) error {
	if f.RequesterID == "" || f.AddresseeID == "" {
		return errors.New("requester and addressee are required")
	}
	if f.RequesterID == f.AddresseeID {
		return ErrSelfFriend
	}
	f.PairKey = PairKey(f.RequesterID, f.AddresseeID)

	if f.Status == "" {
		f.Status = FriendshipPending
	}
	st, err := ParseFriendshipStatus(string(f.Status))
	if err != nil {
		return err
	}
	f.Status = st
	return nil
}

// Involves 用户是否为关系的一方
func (f *Friendship) Involves(userID string) bool {
	return f.RequesterID == userID || f.AddresseeID == userID
}

// Other 返回关系中另一方的ID
func (f *Friendship) Other(userID string) string {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}
