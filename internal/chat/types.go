package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// 消息角色 / Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 会话中的一条消息。数组顺序决定时间顺序，Timestamp 仅用于展示。
// Message is one turn in a conversation. Array position is the
// authoritative ordering; Timestamp is display-only.
type Message struct {
	ID           string `json:"id"`
	Role         string `json:"role"`
	Content      string `json:"content"`
	Timestamp    string `json:"timestamp,omitempty"`
	IsCodeUpdate bool   `json:"is_code_update,omitempty"`
}

// NewMessage 创建带有稳定 ID 与展示时间戳的消息
// NewMessage creates a message with a stable ID and a display timestamp
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Format("15:04"),
	}
}

// IsEmpty 判断消息是否没有可回放的内容
// IsEmpty reports whether the message has no replayable content
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}
