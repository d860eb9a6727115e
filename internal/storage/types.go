package storage

import (
	"sort"

	"workbench/internal/chat"
)

// Session 一个已保存的工作单元：对话历史加可选的生成产物
// Session is one saved unit of work: a conversation history plus an
// optional generated artifact (builder variant only).
type Session struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Code        string         `json:"code,omitempty"`
	Messages    []chat.Message `json:"messages"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// Label 返回会话的展示名称
// Label returns the session's display name
func (s Session) Label() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Title != "" {
		return s.Title
	}
	return "new session"
}

// SortForDisplay 按 UpdatedAt 降序稳定排序，仅在加载时调用
// SortForDisplay stably sorts sessions by UpdatedAt descending. It is
// applied at load time only; live ordering is owned by the workspace.
func SortForDisplay(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt > sessions[j].UpdatedAt
	})
}
