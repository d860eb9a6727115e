package storage

import (
	"sync"

	"workbench/internal/chat"
)

// MemoryStore 内存存储，用于测试和无持久化运行
// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu       sync.Mutex
	sessions []Session
	saves    int
}

// NewMemoryStore 创建内存存储 / NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) == 0 {
		return nil, nil
	}
	out := cloneSessions(s.sessions)
	SortForDisplay(out)
	return out, nil
}

func (s *MemoryStore) Save(sessions []Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = cloneSessions(sessions)
	s.saves++
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// SaveCount 返回 Save 被调用的次数（用于防抖断言）
// SaveCount returns how many times Save was called (for debounce
// assertions).
func (s *MemoryStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func cloneSessions(in []Session) []Session {
	out := make([]Session, len(in))
	copy(out, in)
	for i := range out {
		out[i].Messages = append([]chat.Message(nil), in[i].Messages...)
	}
	return out
}
