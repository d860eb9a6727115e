package contextmgr

import (
	"testing"

	"workbench/internal/chat"
)

// 测试用启发式计数器，避免依赖 BPE 缓存
// Heuristic-only tokenizer so tests do not depend on the BPE cache
func newHeuristicTokenizer() *Tokenizer {
	return &Tokenizer{encodingName: "heuristic", fallback: true}
}

func TestHeuristicTokenCount(t *testing.T) {
	// ascii 约 4 字符/token，CJK 约 1.5 token/字，最少 1
	// ~4 ascii chars per token, CJK at 1.5 tokens per rune, minimum 1
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"aaaaaaaa", 2},
		{"你好世界", 6},
		{"hello 世界", 4},
	}
	tok := newHeuristicTokenizer()
	for _, tc := range cases {
		if got := tok.CountText(tc.text); got != tc.want {
			t.Fatalf("CountText(%q)=%d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestTrimToBudget_KeepsNewestWithinBudget(t *testing.T) {
	tok := newHeuristicTokenizer()
	messages := []chat.Message{
		// 每条 6 token：4 开销 + 1 内容 + 1 角色
		// 6 tokens each: 4 overhead + 1 content + 1 role
		{Role: chat.RoleUser, Content: "aaaa"},
		{Role: chat.RoleUser, Content: "bbbb"},
		{Role: chat.RoleUser, Content: "cccc"},
	}

	trimmed := TrimToBudget(tok, messages, 13)
	if len(trimmed) != 2 {
		t.Fatalf("kept %d messages, want 2", len(trimmed))
	}
	// 从最新往回保留 / kept from the newest backwards
	if trimmed[0].Content != "bbbb" || trimmed[1].Content != "cccc" {
		t.Fatalf("wrong messages kept: %+v", trimmed)
	}
}

func TestTrimToBudget_AlwaysKeepsNewest(t *testing.T) {
	tok := newHeuristicTokenizer()
	messages := []chat.Message{
		{Role: chat.RoleUser, Content: "old"},
		{Role: chat.RoleUser, Content: "a very long newest message that alone exceeds the budget"},
	}

	trimmed := TrimToBudget(tok, messages, 1)
	if len(trimmed) != 1 {
		t.Fatalf("kept %d messages, want 1", len(trimmed))
	}
	if trimmed[0].Content == "old" {
		t.Fatal("kept the wrong end of the history")
	}
}

func TestTrimToBudget_ZeroBudgetDisablesTrimming(t *testing.T) {
	messages := []chat.Message{
		{Role: chat.RoleUser, Content: "one"},
		{Role: chat.RoleUser, Content: "two"},
	}
	trimmed := TrimToBudget(newHeuristicTokenizer(), messages, 0)
	if len(trimmed) != 2 {
		t.Fatalf("zero budget must keep everything, got %d", len(trimmed))
	}
}

func TestModelToEncoding(t *testing.T) {
	cases := map[string]string{
		"":            "cl100k_base",
		"gpt-4o-mini": "o200k_base",
		"o1-preview":  "o200k_base",
		"gpt-3.5":     "cl100k_base",
	}
	for model, want := range cases {
		if got := modelToEncoding(model); got != want {
			t.Fatalf("modelToEncoding(%q)=%q, want %q", model, got, want)
		}
	}
}
