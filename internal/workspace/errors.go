package workspace

import (
	"errors"
	"fmt"
)

// ErrBusy 活动会话已有在途请求。同一会话同时只允许一个在途请求；
// 调用方在 Loading() 为真时应禁用输入。
// ErrBusy means the active session already has an in-flight request.
// A session allows one in-flight request at a time; callers disable
// input while Loading() reports true.
var ErrBusy = errors.New("session has a request in flight")

// ErrSessionNotFound 目标会话不存在
// ErrSessionNotFound means the target session does not exist
var ErrSessionNotFound = errors.New("session not found")

// ValidationError 用户输入不满足前置条件（比如插件未命名就开始对话）。
// 以内联引导消息的形式处理，不会拒绝输入框。
// ValidationError means user input fails a precondition (such as
// chatting before naming the plugin). It is handled inline as a
// guidance message rather than rejecting the input box.
type ValidationError struct {
	Guidance string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Guidance)
}
