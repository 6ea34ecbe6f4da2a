package service

import (
	"context"

	"irma-verse/internal/model"
	"irma-verse/internal/repository"
	"irma-verse/pkg/apperr"
	"irma-verse/pkg/metrics"
)

// 好友事件类型
const (
	EventFriendRequest  = "friend_request"
	EventFriendAccepted = "friend_accepted"
	EventFriendRejected = "friend_rejected"
)

// Notifier 向在线用户推送事件，用户离线时静默丢弃
type Notifier interface {
	NotifyUser(userID string, payload any)
}

// FriendshipEvent 推送给对方的好友事件
type FriendshipEvent struct {
	Type       string            `json:"type"`
	From       model.UserSummary `json:"from"`
	Friendship *model.Friendship `json:"friendship,omitempty"`
}

type FriendshipService struct {
	users       *repository.UserRepository
	friendships *repository.FriendshipRepository
	notifier    Notifier
}

func NewFriendshipService(users *repository.UserRepository, friendships *repository.FriendshipRepository, notifier Notifier) *FriendshipService {
	return &FriendshipService{users: users, friendships: friendships, notifier: notifier}
}

// RequestFriendship 发起好友申请
func (s *FriendshipService) RequestFriendship(ctx context.Context, requesterID, targetID string) (f *model.Friendship, err error) {
	defer record("request", &err)

	if requesterID == targetID {
		return nil, apperr.InvalidOp("cannot friend self")
	}
	requester, err := s.actingUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTarget(ctx, targetID); err != nil {
		return nil, err
	}

	if _, err := s.friendships.FindBetween(ctx, requesterID, targetID); err == nil {
		return nil, apperr.Conflict("relationship already exists")
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	f = &model.Friendship{
		RequesterID: requesterID,
		AddresseeID: targetID,
		Status:      model.FriendshipPending,
	}
	// 并发重复申请由 pair_key 唯一索引拦截，同样返回 Conflict
	if err := s.friendships.Create(ctx, f); err != nil {
		return nil, err
	}

	s.notify(targetID, EventFriendRequest, requester, f)
	return f, nil
}

// AcceptFriendship 被申请人接受申请
func (s *FriendshipService) AcceptFriendship(ctx context.Context, actingUserID, requesterID string) (f *model.Friendship, err error) {
	defer record("accept", &err)

	acting, err := s.actingUser(ctx, actingUserID)
	if err != nil {
		return nil, err
	}

	accepted, err := s.friendships.Accept(ctx, requesterID, actingUserID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, apperr.NotFound("invalid request")
	}

	f, err = s.friendships.FindBetween(ctx, requesterID, actingUserID)
	if err != nil {
		return nil, err
	}

	s.notify(requesterID, EventFriendAccepted, acting, f)
	return f, nil
}

// RejectFriendship 申请人撤回自己发出的申请
func (s *FriendshipService) RejectFriendship(ctx context.Context, actingUserID, targetID string) (err error) {
	defer record("withdraw", &err)

	if actingUserID == targetID {
		return apperr.InvalidOp("cannot reject self")
	}
	if _, err := s.actingUser(ctx, actingUserID); err != nil {
		return err
	}

	deleted, err := s.friendships.DeletePending(ctx, actingUserID, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("no pending request")
	}
	return nil
}

// DeclineFriendship 被申请人拒绝收到的申请
func (s *FriendshipService) DeclineFriendship(ctx context.Context, actingUserID, requesterID string) (err error) {
	defer record("decline", &err)

	if actingUserID == requesterID {
		return apperr.InvalidOp("cannot reject self")
	}
	acting, err := s.actingUser(ctx, actingUserID)
	if err != nil {
		return err
	}

	deleted, err := s.friendships.DeletePending(ctx, requesterID, actingUserID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("no pending request")
	}

	s.notify(requesterID, EventFriendRejected, acting, nil)
	return nil
}

// ListIncomingRequests 收到的待处理申请人，按申请时间排序
func (s *FriendshipService) ListIncomingRequests(ctx context.Context, userID string) ([]model.UserSummary, error) {
	if _, err := s.actingUser(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.friendships.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, f := range rows {
		if f.RequesterID != userID {
			ids = append(ids, f.RequesterID)
		}
	}

	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	out := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

// ListFriends 已接受的好友，按姓名排序
func (s *FriendshipService) ListFriends(ctx context.Context, userID string) ([]model.UserSummary, error) {
	if _, err := s.actingUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.friendships.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	return model.Summaries(users), nil
}

// ListMutualFriends 两用户的共同好友
func (s *FriendshipService) ListMutualFriends(ctx context.Context, userID, otherUserID string) ([]model.UserSummary, error) {
	if userID == otherUserID {
		return nil, apperr.InvalidOp("cannot compare with self")
	}
	if _, err := s.actingUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.requireTarget(ctx, otherUserID); err != nil {
		return nil, err
	}
	users, err := s.friendships.ListMutualFriends(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	return model.Summaries(users), nil
}

// Unfriend 删除好友关系
func (s *FriendshipService) Unfriend(ctx context.Context, userID, otherUserID string) (err error) {
	defer record("unfriend", &err)

	if userID == otherUserID {
		return apperr.InvalidOp("cannot unfriend self")
	}
	if _, err := s.actingUser(ctx, userID); err != nil {
		return err
	}
	deleted, err := s.friendships.DeleteAccepted(ctx, userID, otherUserID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("not friends")
	}
	return nil
}

func (s *FriendshipService) actingUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *FriendshipService) requireTarget(ctx context.Context, id string) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("target user not found")
	}
	return nil
}

func (s *FriendshipService) notify(userID, eventType string, from *model.User, f *model.Friendship) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyUser(userID, FriendshipEvent{
		Type:       eventType,
		From:       from.Summary(),
		Friendship: f,
	})
}

func record(operation string, err *error) {
	result := "ok"
	if *err != nil {
		result = string(apperr.KindOf(*err))
	}
	metrics.RecordFriendshipOperation(operation, result)
}
