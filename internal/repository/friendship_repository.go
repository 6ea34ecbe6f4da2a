package repository

import (
	"context"
	"time"

	"irma-verse/internal/model"
	"irma-verse/pkg/apperr"

	"gorm.io/gorm"
)

type FriendshipRepository struct {
	orm *gorm.DB
}

func NewFriendshipRepository(orm *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{orm: orm}
}

// Create 创建好友申请；同一用户对已有记录时由唯一索引拒绝并返回 Conflict
func (r *FriendshipRepository) Create(ctx context.Context, f *model.Friendship) error {
	err := r.orm.WithContext(ctx).Create(f).Error
	return translate(err, "", "relationship already exists")
}

// FindBetween 查询两用户之间任意方向、任意状态的记录
func (r *FriendshipRepository) FindBetween(ctx context.Context, a, b string) (*model.Friendship, error) {
	var f model.Friendship
	err := r.orm.WithContext(ctx).Where("pair_key = ?", model.PairKey(a, b)).First(&f).Error
	if err != nil {
		return nil, translate(err, "relationship not found", "")
	}
	return &f, nil
}

// FindPending 查询 requester → addressee 的待处理申请
func (r *FriendshipRepository) FindPending(ctx context.Context, requesterID, addresseeID string) (*model.Friendship, error) {
	var f model.Friendship
	err := r.orm.WithContext(ctx).
		Where("requester_id = ? AND addressee_id = ? AND status = ?", requesterID, addresseeID, model.FriendshipPending).
		First(&f).Error
	if err != nil {
		return nil, translate(err, "no pending request", "")
	}
	return &f, nil
}

// Accept 将待处理申请置为已接受；条件更新，未命中返回 false
func (r *FriendshipRepository) Accept(ctx context.Context, requesterID, addresseeID string) (bool, error) {
	res := r.orm.WithContext(ctx).Model(&model.Friendship{}).
		Where("requester_id = ? AND addressee_id = ? AND status = ?", requesterID, addresseeID, model.FriendshipPending).
		UpdateColumns(map[string]interface{}{
			"status":     model.FriendshipAccepted,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "")
	}
	return res.RowsAffected > 0, nil
}

// DeletePending 删除 requester → addressee 的待处理申请
func (r *FriendshipRepository) DeletePending(ctx context.Context, requesterID, addresseeID string) (bool, error) {
	res := r.orm.WithContext(ctx).
		Where("requester_id = ? AND addressee_id = ? AND status = ?", requesterID, addresseeID, model.FriendshipPending).
		Delete(&model.Friendship{})
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "")
	}
	return res.RowsAffected > 0, nil
}

// DeleteAccepted 删除两用户之间的好友关系（任意方向）
func (r *FriendshipRepository) DeleteAccepted(ctx context.Context, a, b string) (bool, error) {
	res := r.orm.WithContext(ctx).
		Where("pair_key = ? AND status = ?", model.PairKey(a, b), model.FriendshipAccepted).
		Delete(&model.Friendship{})
	if res.Error != nil {
		return false, apperr.Internal(res.Error, "")
	}
	return res.RowsAffected > 0, nil
}

// ListIncoming 发给 userID 的待处理申请，按申请时间升序
func (r *FriendshipRepository) ListIncoming(ctx context.Context, userID string) ([]model.Friendship, error) {
	var list []model.Friendship
	err := r.orm.WithContext(ctx).
		Where("addressee_id = ? AND status = ?", userID, model.FriendshipPending).
		Order("created_at ASC").Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, apperr.Internal(err, "")
	}
	return list, nil
}

// ListFriends 与 userID 互为好友的用户，按姓名升序
func (r *FriendshipRepository) ListFriends(ctx context.Context, userID string) ([]model.User, error) {
	var users []model.User
	err := r.orm.WithContext(ctx).
		Where(r.friendOf(ctx, userID)).
		Order("name ASC").Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, apperr.Internal(err, "")
	}
	return users, nil
}

// ListMutualFriends 两用户的共同好友，按姓名升序
func (r *FriendshipRepository) ListMutualFriends(ctx context.Context, a, b string) ([]model.User, error) {
	var users []model.User
	err := r.orm.WithContext(ctx).
		Where(r.friendOf(ctx, a)).
		Where(r.friendOf(ctx, b)).
		Where("id NOT IN ?", []string{a, b}).
		Order("name ASC").Order("id ASC").
		Find(&users).Error
	if err != nil {
		return nil, apperr.Internal(err, "")
	}
	return users, nil
}

// friendOf 条件：用户ID为 userID 的已接受好友（任意方向）
func (r *FriendshipRepository) friendOf(ctx context.Context, userID string) *gorm.DB {
	sent := r.orm.WithContext(ctx).Model(&model.Friendship{}).
		Select("addressee_id").
		Where("requester_id = ? AND status = ?", userID, model.FriendshipAccepted)
	received := r.orm.WithContext(ctx).Model(&model.Friendship{}).
		Select("requester_id").
		Where("addressee_id = ? AND status = ?", userID, model.FriendshipAccepted)
	return r.orm.Where("id IN (?)", sent).Or("id IN (?)", received)
}
