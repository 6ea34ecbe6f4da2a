// Package chat 保存每个用户与指导老师的会话视图，只存在于内存中
package chat

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"irma-verse/pkg/apperr"
)

// 发送方
const (
	SenderUser       = "user"
	SenderInstructor = "instructor"
)

// 指导老师在线状态
const (
	StatusOnline  = "online"
	StatusAway    = "away"
	StatusOffline = "offline"
)

type Instructor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar"`
	Status    string `json:"status"`
	Expertise string `json:"expertise"`
}

type Message struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	Time    string `json:"time"`
	Status  string `json:"status,omitempty"`
}

// Thread 与一位指导老师的会话
type Thread struct {
	Instructor  Instructor `json:"instructor"`
	Messages    []Message  `json:"messages"`
	LastMessage string     `json:"lastMessage"`
	Unread      int        `json:"unread"`
}

func (t Thread) clone() Thread {
	t.Messages = append([]Message(nil), t.Messages...)
	return t
}

// Board 会话列表及当前选中的会话
type Board struct {
	mu       sync.Mutex
	threads  []Thread
	selected string
	seq      int
	now      func() time.Time
}

// NewBoard 选中 requestedID 对应的会话，不存在时选中第一个
func NewBoard(threads []Thread, requestedID string) *Board {
	b := &Board{
		threads: make([]Thread, 0, len(threads)),
		now:     time.Now,
	}
	for _, t := range threads {
		b.threads = append(b.threads, t.clone())
		b.seq += len(t.Messages)
	}
	if len(b.threads) > 0 {
		b.selected = b.threads[0].Instructor.ID
	}
	if _, ok := b.index(requestedID); ok {
		b.selected = requestedID
	}
	return b
}

// WithClock 替换时钟（测试用）
func (b *Board) WithClock(now func() time.Time) *Board {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	return b
}

func (b *Board) index(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for i := range b.threads {
		if b.threads[i].Instructor.ID == id {
			return i, true
		}
	}
	return 0, false
}

// SelectThread 切换当前会话，不改变未读数
func (b *Board) SelectThread(instructorID string) (Thread, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.index(instructorID)
	if !ok {
		return Thread{}, apperr.NotFound("thread not found")
	}
	b.selected = instructorID
	return b.threads[i].clone(), nil
}

// Selected 当前选中的会话ID，无会话时为空
func (b *Board) Selected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// SendMessage 追加一条用户消息，更新预览并清零未读
func (b *Board) SendMessage(threadID, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, apperr.Validation("message must not be empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.index(threadID)
	if !ok {
		return Message{}, apperr.NotFound("thread not found")
	}

	b.seq++
	msg := Message{
		ID:      "m-" + strconv.Itoa(b.seq),
		Sender:  SenderUser,
		Content: text,
		Time:    b.now().Format("15:04"),
		Status:  "sent",
	}
	t := &b.threads[i]
	t.Messages = append(t.Messages, msg)
	t.LastMessage = text
	t.Unread = 0
	return msg, nil
}

// FilterThreads 按指导老师姓名或角色做不区分大小写的匹配，空白关键词返回全部
func (b *Board) FilterThreads(search string) []Thread {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(search))

	out := make([]Thread, 0, len(b.threads))
	for _, t := range b.threads {
		if q == "" ||
			strings.Contains(strings.ToLower(t.Instructor.Name), q) ||
			strings.Contains(strings.ToLower(t.Instructor.Role), q) {
			out = append(out, t.clone())
		}
	}
	return out
}

// Threads 全部会话的副本
func (b *Board) Threads() []Thread {
	return b.FilterThreads("")
}
