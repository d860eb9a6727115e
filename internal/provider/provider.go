package provider

import (
	"context"
	"errors"
	"fmt"

	"workbench/internal/chat"
)

// ChatRequest 封装一次模型请求
// ChatRequest wraps a single model call
type ChatRequest struct {
	Model       string
	System      string
	History     []chat.Message
	UserText    string
	Temperature *float32
	MaxTokens   int
}

// StreamCallbacks 流式响应的回调集
// StreamCallbacks is the callback set for streaming responses
type StreamCallbacks struct {
	OnTextChunk func(chunk string)
}

// ChatResponse 完整响应
// ChatResponse is the complete response
type ChatResponse struct {
	Content      string
	FinishReason string
}

// Provider 模型提供方接口。传入回调时为流式，否则为单次完整响应。
// Provider is the model backend interface. With callbacks the call is
// streaming; without, it is single-shot.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest, cb *StreamCallbacks) (ChatResponse, error)

	// Name 返回 provider 名称 / Name returns the provider name
	Name() string

	// CurrentModel 返回当前活跃模型
	// CurrentModel returns the current active model
	CurrentModel() string
}

// RemoteCallError 远端调用失败：网络错误、非 2xx 状态或畸形响应。
// 在工作区层被捕获并转换为一条助手角色的错误消息，绝不外抛。
// RemoteCallError is a failed remote call: transport error, non-2xx
// status, or a malformed response. The workspace layer catches it and
// converts it into a single assistant-role error message.
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote call %s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// IsRemoteCallError 判断错误是否来自远端调用
// IsRemoteCallError reports whether err is a remote call failure
func IsRemoteCallError(err error) bool {
	var rce *RemoteCallError
	return errors.As(err, &rce)
}
