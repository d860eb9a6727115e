package chat

import "testing"

func TestNewMessage(t *testing.T) {
	a := NewMessage(RoleUser, "hello")
	b := NewMessage(RoleAssistant, "hi")

	if a.ID == "" || b.ID == "" {
		t.Fatal("messages must carry stable ids")
	}
	if a.ID == b.ID {
		t.Fatal("message ids must be unique")
	}
	if a.Role != RoleUser || a.Content != "hello" {
		t.Fatalf("message fields: %+v", a)
	}
	if a.Timestamp == "" {
		t.Fatal("timestamp not set")
	}
}

func TestIsEmpty(t *testing.T) {
	if !(Message{Role: RoleUser, Content: "   "}).IsEmpty() {
		t.Fatal("whitespace-only content is empty")
	}
	if (Message{Role: RoleUser, Content: "x"}).IsEmpty() {
		t.Fatal("non-blank content is not empty")
	}
}
