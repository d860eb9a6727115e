package storage

import (
	"os"
	"path/filepath"
	"testing"

	"workbench/internal/chat"
)

func newTestJSONStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.json")
	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	return store, path
}

func TestJSONStore_RoundTrip(t *testing.T) {
	store, _ := newTestJSONStore(t)

	sessions := []Session{
		{
			ID:        "sess_old",
			Title:     "older",
			Messages:  []chat.Message{{ID: "m1", Role: "user", Content: "hello"}},
			CreatedAt: "2024-01-01T00:00:00Z",
			UpdatedAt: "2024-01-01T00:00:00Z",
		},
		{
			ID:        "sess_new",
			Title:     "newer",
			Messages:  []chat.Message{{ID: "m2", Role: "assistant", Content: "hi"}},
			CreatedAt: "2024-06-01T00:00:00Z",
			UpdatedAt: "2024-06-01T00:00:00Z",
		},
	}
	if err := store.Save(sessions); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Load count=%d, want 2", len(loaded))
	}
	// 按 UpdatedAt 降序 / sorted by UpdatedAt descending
	if loaded[0].ID != "sess_new" || loaded[1].ID != "sess_old" {
		t.Fatalf("unexpected order: %s, %s", loaded[0].ID, loaded[1].ID)
	}
	if loaded[1].Messages[0].Content != "hello" {
		t.Fatalf("message content lost: %+v", loaded[1].Messages)
	}
	if loaded[0].Messages[0].ID != "m2" {
		t.Fatalf("message id lost: %+v", loaded[0].Messages)
	}
}

func TestJSONStore_MissingFile(t *testing.T) {
	store, _ := newTestJSONStore(t)
	sessions, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sessions != nil {
		t.Fatalf("expected nil sessions, got %d", len(sessions))
	}
}

func TestJSONStore_MalformedSnapshot(t *testing.T) {
	store, path := newTestJSONStore(t)
	if err := os.WriteFile(path, []byte(`{"not":"an array"`), 0o644); err != nil {
		t.Fatal(err)
	}

	sessions, err := store.Load()
	if err != nil {
		t.Fatalf("malformed snapshot must not fail: %v", err)
	}
	if sessions != nil {
		t.Fatalf("malformed snapshot must read as absent, got %d sessions", len(sessions))
	}
}

func TestJSONStore_EmptySaveClears(t *testing.T) {
	store, path := newTestJSONStore(t)

	if err := store.Save([]Session{{ID: "sess_1", UpdatedAt: NowUTC()}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot should exist: %v", err)
	}

	if err := store.Save(nil); err != nil {
		t.Fatalf("Save(nil): %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty save should remove the snapshot, stat err=%v", err)
	}
}

func TestSortForDisplayStable(t *testing.T) {
	sessions := []Session{
		{ID: "a", UpdatedAt: "2024-01-02T00:00:00Z"},
		{ID: "b", UpdatedAt: "2024-01-03T00:00:00Z"},
		{ID: "c", UpdatedAt: "2024-01-02T00:00:00Z"},
	}
	SortForDisplay(sessions)
	if sessions[0].ID != "b" {
		t.Fatalf("newest first, got %s", sessions[0].ID)
	}
	// 相同时间戳保持原有相对顺序 / equal keys keep relative order
	if sessions[1].ID != "a" || sessions[2].ID != "c" {
		t.Fatalf("sort not stable: %s, %s", sessions[1].ID, sessions[2].ID)
	}
}
