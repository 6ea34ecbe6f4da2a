package chat

import (
	"context"
	"sync"
)

// ThreadSource 为用户生成初始会话列表
type ThreadSource func(ctx context.Context, userID string) ([]Thread, error)

// Registry 按用户保存会话视图，进程重启即丢失
type Registry struct {
	mu     sync.Mutex
	boards map[string]*Board
	source ThreadSource
}

func NewRegistry(source ThreadSource) *Registry {
	return &Registry{boards: make(map[string]*Board), source: source}
}

// Get 返回用户的会话视图，不存在时创建；requestedID 只在创建时生效
func (r *Registry) Get(ctx context.Context, userID, requestedID string) (*Board, error) {
	r.mu.Lock()
	b, ok := r.boards[userID]
	r.mu.Unlock()
	if ok {
		return b, nil
	}
	return r.build(ctx, userID, requestedID, false)
}

// Reset 重新生成用户的会话视图
func (r *Registry) Reset(ctx context.Context, userID string) (*Board, error) {
	return r.build(ctx, userID, "", true)
}

func (r *Registry) build(ctx context.Context, userID, requestedID string, replace bool) (*Board, error) {
	threads, err := r.source(ctx, userID)
	if err != nil {
		return nil, err
	}
	b := NewBoard(threads, requestedID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.boards[userID]; ok && !replace {
		return existing, nil
	}
	r.boards[userID] = b
	return b, nil
}

// Len 已创建的会话视图数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}
