package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func streamChunk(content string) string {
	return fmt.Sprintf(`{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"test-model","choices":[{"index":0,"delta":{"content":%q}}]}`, content)
}

func finishChunk() string {
	return `{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"test-model","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`
}

// 流式调用在送出第一个片段后中断：不允许重试重放前缀，调用方的
// 累计值必须保持未重复。
// A stream that breaks after delivering its first fragment must not be
// retried; the caller's accumulator must never see the prefix twice.
func TestChat_NoRetryAfterFirstFragment(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\n", streamChunk("Hel"))
		w.(http.Flusher).Flush()
		// 送出片段后直接断开连接 / drop the connection mid-stream
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		_ = conn.Close()
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{
		BaseURL:    srv.URL,
		APIKey:     "sk-test",
		Model:      "test-model",
		MaxRetries: 3,
	})

	var acc strings.Builder
	_, err := p.Chat(context.Background(), ChatRequest{UserText: "hi"}, &StreamCallbacks{
		OnTextChunk: func(chunk string) { acc.WriteString(chunk) },
	})
	if !IsRemoteCallError(err) {
		t.Fatalf("got %v, want remote call error", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls=%d, a stream that delivered fragments must not be replayed", got)
	}
	if acc.String() != "Hel" {
		t.Fatalf("accumulator=%q, delivered prefix must not repeat", acc.String())
	}
}

// 失败发生在任何片段送出之前时仍然重试
// Failures before any fragment was delivered still retry
func TestChat_RetriesBeforeFirstFragment(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, `{"error":{"message":"upstream hiccup"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\n", streamChunk("Hello"))
		fmt.Fprintf(w, "data: %s\n\n", finishChunk())
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{
		BaseURL:    srv.URL,
		APIKey:     "sk-test",
		Model:      "test-model",
		MaxRetries: 2,
	})

	var acc strings.Builder
	resp, err := p.Chat(context.Background(), ChatRequest{UserText: "hi"}, &StreamCallbacks{
		OnTextChunk: func(chunk string) { acc.WriteString(chunk) },
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls=%d, want one retry", got)
	}
	if resp.Content != "Hello" || acc.String() != "Hello" {
		t.Fatalf("content=%q acc=%q, want %q", resp.Content, acc.String(), "Hello")
	}
	if resp.FinishReason != "stop" {
		t.Fatalf("finish reason=%q", resp.FinishReason)
	}
}
