// Package testutil 提供基于内存sqlite的测试数据库和假数据
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"irma-verse/config"
	"irma-verse/internal/model"
	"irma-verse/pkg/db"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB 打开已迁移的内存sqlite库，测试结束时关闭
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"}, "info")
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&model.User{}, &model.Friendship{}))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// FakeUser 生成未保存的随机用户
func FakeUser(role string) *model.User {
	return &model.User{
		Name:         gofakeit.Name(),
		Email:        fmt.Sprintf("%s.%s@irma.test", strings.ToLower(gofakeit.FirstName()), uuid.NewString()[:8]),
		PasswordHash: "unused",
		Role:         role,
		Class:        gofakeit.RandomString([]string{"X IPA 1", "XI IPS 2", "XII IPA 1"}),
	}
}

// CreateUser 保存一个随机用户
func CreateUser(t *testing.T, gdb *gorm.DB, role string) *model.User {
	t.Helper()
	u := FakeUser(role)
	require.NoError(t, gdb.WithContext(context.Background()).Create(u).Error)
	return u
}

// CreateNamedUser 保存指定姓名的用户
func CreateNamedUser(t *testing.T, gdb *gorm.DB, name, role string) *model.User {
	t.Helper()
	u := FakeUser(role)
	u.Name = name
	require.NoError(t, gdb.Create(u).Error)
	return u
}
