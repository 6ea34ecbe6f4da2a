package repository

import (
	"context"

	"irma-verse/internal/model"
	"irma-verse/pkg/apperr"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(orm *gorm.DB) *UserRepository {
	return &UserRepository{orm: orm}
}

// Create 创建用户，邮箱重复返回 Conflict
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.orm.WithContext(ctx).Create(user).Error
	return translate(err, "user not found", "email already registered")
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err, "user not found", "")
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err, "user not found", "")
	}
	return &u, nil
}

// Exists 用户是否存在
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.orm.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperr.Internal(err, "")
	}
	return n > 0, nil
}

// UpdateProfile 更新资料字段
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.orm.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperr.Internal(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// UpdatePasswordHash 更新密码哈希
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.UpdateProfile(ctx, id, map[string]interface{}{"password_hash": hash})
}

// ListMembers 除指导老师外的全部用户，按姓名升序
func (r *UserRepository) ListMembers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.orm.WithContext(ctx).
		Where("role <> ?", model.RoleInstructor).
		Order("name ASC").Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, apperr.Internal(err, "")
	}
	return users, nil
}

// ListByRole 指定角色的用户，按姓名升序
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	var users []model.User
	err := r.orm.WithContext(ctx).
		Where("role = ?", role).
		Order("name ASC").Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, apperr.Internal(err, "")
	}
	return users, nil
}

// ListByIDs 按ID批量查询，顺序不保证
func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	if err := r.orm.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperr.Internal(err, "")
	}
	return users, nil
}

// ListAll 全部用户（维护工具使用）
func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.orm.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, apperr.Internal(err, "")
	}
	return users, nil
}
