package service

import (
	"context"

	"irma-verse/internal/chat"
	"irma-verse/internal/model"
	"irma-verse/internal/repository"
	"irma-verse/pkg/sanitize"
)

// PresenceChecker 判断用户当前是否有打开的推送连接
type PresenceChecker interface {
	IsOnline(userID string) bool
}

// ThreadsView 会话列表及当前选中的会话
type ThreadsView struct {
	Threads    []chat.Thread `json:"threads"`
	SelectedID string        `json:"selectedId"`
}

// ChatService 指导老师会话视图，每个登录用户一份，只存在于内存
type ChatService struct {
	users    *repository.UserRepository
	presence PresenceChecker
	boards   *chat.Registry
}

func NewChatService(users *repository.UserRepository, presence PresenceChecker) *ChatService {
	s := &ChatService{users: users, presence: presence}
	s.boards = chat.NewRegistry(s.initialThreads)
	return s
}

// ListThreads 过滤会话；首次访问时按 requestedID 初始化选中项
func (s *ChatService) ListThreads(ctx context.Context, userID, search, requestedID string) (*ThreadsView, error) {
	b, err := s.boards.Get(ctx, userID, requestedID)
	if err != nil {
		return nil, err
	}
	return &ThreadsView{Threads: b.FilterThreads(search), SelectedID: b.Selected()}, nil
}

// SelectThread 切换当前会话
func (s *ChatService) SelectThread(ctx context.Context, userID, instructorID string) (*chat.Thread, error) {
	b, err := s.boards.Get(ctx, userID, instructorID)
	if err != nil {
		return nil, err
	}
	t, err := b.SelectThread(instructorID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SendMessage 在会话中追加用户消息，文本去除HTML
func (s *ChatService) SendMessage(ctx context.Context, userID, instructorID, text string) (*chat.Message, error) {
	b, err := s.boards.Get(ctx, userID, instructorID)
	if err != nil {
		return nil, err
	}
	msg, err := b.SendMessage(instructorID, sanitize.Text(text))
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Reset 丢弃并重建用户的会话视图
func (s *ChatService) Reset(ctx context.Context, userID string) (*ThreadsView, error) {
	b, err := s.boards.Reset(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ThreadsView{Threads: b.Threads(), SelectedID: b.Selected()}, nil
}

func (s *ChatService) initialThreads(ctx context.Context, userID string) ([]chat.Thread, error) {
	instructors, err := s.users.ListByRole(ctx, model.RoleInstructor)
	if err != nil {
		return nil, err
	}

	threads := make([]chat.Thread, 0, len(instructors))
	for _, u := range instructors {
		if u.ID == userID {
			continue
		}
		threads = append(threads, chat.Thread{
			Instructor: s.instructor(u),
			Messages:   []chat.Message{},
		})
	}
	return threads, nil
}

func (s *ChatService) instructor(u model.User) chat.Instructor {
	status := chat.StatusOffline
	if s.presence != nil && s.presence.IsOnline(u.ID) {
		status = chat.StatusOnline
	}
	role := u.Class
	if role == "" {
		role = "Instruktur"
	}
	return chat.Instructor{
		ID:        u.ID,
		Name:      u.Name,
		Role:      role,
		Avatar:    u.Avatar,
		Status:    status,
		Expertise: u.Bio,
	}
}
