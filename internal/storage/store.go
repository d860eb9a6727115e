package storage

// Store 持久化接口，支持多后端 (JSON snapshot / SQLite)
// Store is the persistence interface supporting multiple backends.
//
// The collection is always read and written as a whole: one logical
// writer, no partial updates. Load must signal an absent, empty, or
// unreadable snapshot as (nil, nil) rather than failing; a corrupt
// snapshot is never fatal to the workspace.
type Store interface {
	// Load 读取整个会话集合；缺失或损坏时返回 (nil, nil)
	// Load reads the whole session collection; absent or corrupt
	// snapshots yield (nil, nil).
	Load() ([]Session, error)

	// Save 整体写入会话集合；空集合等同于清除存储
	// Save writes the whole collection; an empty collection clears
	// the underlying storage instead of persisting an empty marker.
	Save(sessions []Session) error

	// Close 释放底层资源 / Close releases underlying resources
	Close() error
}
