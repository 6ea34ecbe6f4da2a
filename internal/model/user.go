package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 用户角色
const (
	RoleUser       = "user"
	RoleInstructor = "instruktur"
	RoleAdmin      = "admin"
)

// User 用户模型
// 邮箱唯一；密码仅存储哈希（PasswordHash），不参与序列化
// 用户不做硬删除

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(128);not null;index;comment:姓名" json:"name"`
	Email        string    `gorm:"type:varchar(128);not null;uniqueIndex;comment:邮箱" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null;comment:密码哈希" json:"-"`
	Role         string    `gorm:"type:varchar(32);not null;default:'user';index;comment:角色" json:"role"`
	Phone        string    `gorm:"type:varchar(32);comment:手机号" json:"phone"`
	Address      string    `gorm:"type:varchar(255);comment:地址" json:"address"`
	Bio          string    `gorm:"type:text;comment:简介" json:"bio"`
	Avatar       string    `gorm:"type:varchar(255);comment:头像URL" json:"avatar"`
	Class        string    `gorm:"type:varchar(64);comment:班级" json:"class"`
	CreatedAt    time.Time `gorm:"comment:创建时间" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"comment:更新时间" json:"updatedAt"`
}

// TableName 全局使用单数表名
func (User) TableName() string { return "user" }

// BeforeCreate 生成UUID并补全默认角色
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsInstructor 是否为指导老师
func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }

// UserSummary 列表展示用的用户投影
type UserSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Class  string `json:"class,omitempty"`
	Avatar string `json:"avatar"`
}

// Summary 转为列表投影
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:     u.ID,
		Name:   u.Name,
		Role:   u.Role,
		Class:  u.Class,
		Avatar: u.Avatar,
	}
}

// Summaries 批量投影，空输入返回空切片而非nil
func Summaries(users []User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out
}

// ValidRole 角色值是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}
