package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JSONStore 将会话集合保存为单个 JSON 数组快照文件
// JSONStore persists the session collection as a single JSON array
// snapshot file, one file per workspace variant.
type JSONStore struct {
	path string
}

// NewJSONStore 创建 JSON 快照存储
// NewJSONStore creates a JSON snapshot store
func NewJSONStore(path string) (*JSONStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("json store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &JSONStore{path: path}, nil
}

// Load 读取快照。文件缺失、为空或 JSON 损坏都视为“没有会话”。
// Load reads the snapshot. A missing, empty, or malformed file is
// treated as "no sessions" — a corrupt snapshot is discarded, never
// propagated as fatal.
func (s *JSONStore) Load() ([]Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		// 损坏的快照按“不存在”处理 / Corrupt snapshot treated as absent
		return nil, nil
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	SortForDisplay(sessions)
	return sessions, nil
}

// Save 整体写入。空集合删除快照文件而不是写入 []。
// Save writes the whole collection. An empty collection removes the
// snapshot file rather than persisting an empty marker.
func (s *JSONStore) Save(sessions []Session) error {
	if len(sessions) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear %s: %w", s.path, err)
		}
		return nil
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Close 无需释放资源 / Close has nothing to release
func (s *JSONStore) Close() error {
	return nil
}
