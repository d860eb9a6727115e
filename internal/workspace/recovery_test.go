package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"workbench/internal/storage"
)

// 快照损坏时挂载必须成功：按空集合处理并合成一个全新会话，
// 而不是让启动失败。
// Mounting over a corrupt snapshot must succeed: it reads as an empty
// collection and a fresh session is synthesized instead of failing
// startup.
func TestNew_CorruptSnapshotStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte(`[{"id": "sess_1", "title`), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	ws, err := New(store, &scriptedProvider{}, nil, Options{Variant: VariantChat, Model: "test-model"})
	if err != nil {
		t.Fatalf("New over corrupt snapshot: %v", err)
	}
	defer ws.Close()

	sessions := ws.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("sessions=%d, want one fresh session", len(sessions))
	}
	if len(sessions[0].Messages) != 0 {
		t.Fatalf("fresh chat session should be empty: %+v", sessions[0].Messages)
	}
	if ws.State() != StateReady {
		t.Fatalf("state=%v, want Ready", ws.State())
	}
}
