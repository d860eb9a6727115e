package workspace

import (
	"context"
	"fmt"
	"strings"

	"workbench/internal/chat"
	"workbench/internal/i18n"
	"workbench/internal/provider"
	"workbench/internal/storage"
)

const chatSystemPrompt = `You are a helpful assistant inside a developer toolbox.
Answer concisely in the user's language. Use Markdown when it helps.`

const builderSystemPrompt = `You are a WordPress plugin developer assistant.
When the user asks for plugin behavior, respond with a short explanation and
the complete plugin code in a single fenced php code block. Always return the
full file, not a diff.`

func defaultSystemPrompt(v Variant) string {
	if v == VariantBuilder {
		return builderSystemPrompt
	}
	return chatSystemPrompt
}

// Send 发送一条用户消息。用户消息立即乐观追加；聊天变体走流式响应，
// 每个片段到达后用累计值覆盖占位助手消息（按消息 ID 定位，在途请求
// 带着发起时的会话 ID，迟到片段不会污染其他会话）；构建器变体走单次
// 响应并提取代码产物。远端失败被就地转换为一条助手角色的错误消息。
// onFragment（可为 nil）在每个片段应用后收到原始增量。
// Send submits one user turn. The user message is appended
// optimistically. The chat variant streams: each fragment overwrites
// the placeholder assistant message with the cumulative value,
// addressed by message id, and the in-flight request carries the
// session id from submit time so late fragments cannot corrupt
// another session. The builder variant is single-shot and extracts
// the code artifact. Remote failures become a single assistant-role
// error message in place. onFragment (may be nil) receives each raw
// delta after it is applied.
func (w *Workspace) Send(ctx context.Context, text string, onFragment func(string)) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	w.mu.Lock()
	if w.credErr != nil || w.provider == nil {
		err := w.credErr
		w.mu.Unlock()
		if err != nil {
			return err
		}
		return fmt.Errorf("no provider configured")
	}
	sessionID := w.activeID
	if w.inflight[sessionID] {
		w.mu.Unlock()
		return ErrBusy
	}
	idx := w.indexOfLocked(sessionID)
	if idx < 0 {
		w.mu.Unlock()
		return ErrSessionNotFound
	}

	// 构建器前置校验：未命名先给引导，不拒绝输入框
	// Builder precondition: unnamed plugin gets guidance inline
	if w.opts.Variant == VariantBuilder && strings.TrimSpace(w.sessions[idx].Name) == "" {
		verr := &ValidationError{Guidance: i18n.T("builder.name_required")}
		w.sessions[idx].Messages = append(w.sessions[idx].Messages,
			chat.NewMessage(chat.RoleUser, text),
			chat.NewMessage(chat.RoleAssistant, verr.Guidance),
		)
		touch(&w.sessions[idx])
		w.persist.Schedule(sessionID)
		w.mu.Unlock()
		return nil
	}

	// 乐观追加 / Optimistic append
	w.sessions[idx].Messages = append(w.sessions[idx].Messages, chat.NewMessage(chat.RoleUser, text))
	if w.opts.Variant == VariantChat && strings.TrimSpace(w.sessions[idx].Title) == "" {
		w.sessions[idx].Title = deriveTitle(text)
	}
	touch(&w.sessions[idx])

	history := append([]chat.Message(nil), w.history...)
	prompt := text
	if w.opts.Variant == VariantBuilder {
		prompt = w.builderPromptLocked(idx, text)
	}

	w.inflight[sessionID] = true
	w.state = StateSending
	placeholderID := newMessageID()
	w.persist.Schedule(sessionID)
	w.mu.Unlock()

	req := provider.ChatRequest{
		Model:    w.opts.Model,
		System:   w.opts.SystemPrompt,
		History:  history,
		UserText: prompt,
	}

	var resp provider.ChatResponse
	var err error
	if w.opts.Variant == VariantChat {
		var acc strings.Builder
		cb := &provider.StreamCallbacks{OnTextChunk: func(chunk string) {
			acc.WriteString(chunk)
			// 覆盖为累计值而非追加片段 / Overwrite with the cumulative
			// value, never append the raw fragment
			w.applyFragment(sessionID, placeholderID, acc.String())
			if onFragment != nil {
				onFragment(chunk)
			}
		}}
		resp, err = w.provider.Chat(ctx, req, cb)
	} else {
		resp, err = w.provider.Chat(ctx, req, nil)
	}

	w.finishSend(sessionID, placeholderID, text, resp, err)
	return nil
}

// applyFragment 按 (会话 ID, 消息 ID) 应用一个流式片段的累计值。
// 会话已被删除时片段被丢弃。
// applyFragment applies a cumulative streaming value addressed by
// (session id, message id). Fragments for a deleted session are
// dropped.
func (w *Workspace) applyFragment(sessionID, messageID, cumulative string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := w.indexOfLocked(sessionID)
	if idx < 0 {
		return
	}
	sess := &w.sessions[idx]
	for i := range sess.Messages {
		if sess.Messages[i].ID == messageID {
			sess.Messages[i].Content = cumulative
			touch(sess)
			w.persist.Schedule(sessionID)
			return
		}
	}
	// 首个片段：追加占位助手消息 / First fragment: append the placeholder
	placeholder := chat.NewMessage(chat.RoleAssistant, cumulative)
	placeholder.ID = messageID
	sess.Messages = append(sess.Messages, placeholder)
	touch(sess)
	w.persist.Schedule(sessionID)
}

func (w *Workspace) finishSend(sessionID, placeholderID, userText string, resp provider.ChatResponse, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.inflight, sessionID)
	if sessionID == w.activeID && w.state == StateSending {
		w.state = StateReady
	}

	idx := w.indexOfLocked(sessionID)
	if idx < 0 {
		// 会话在请求期间被删除 / Session deleted while in flight
		return
	}
	sess := &w.sessions[idx]

	if err != nil {
		w.recordErrorLocked(sess, placeholderID, err)
		w.persist.Schedule(sessionID)
		return
	}

	assistant := chat.Message{}
	switch w.opts.Variant {
	case VariantBuilder:
		code, display, ok := ExtractCode(resp.Content, i18n.T("builder.code_marker"))
		if ok {
			sess.Code = code
		}
		msg := chat.NewMessage(chat.RoleAssistant, display)
		msg.IsCodeUpdate = ok
		sess.Messages = append(sess.Messages, msg)
		assistant = msg
	default:
		assistant = w.sealStreamLocked(sess, placeholderID, resp.Content)
	}
	touch(sess)

	// 仅当会话仍处于活动状态时延续重放上下文；切换过的会话会在下次
	// 激活时整体重建。
	// Extend the replayed context only while the session is still
	// active; a switched-away session is rebuilt wholesale on its next
	// activation.
	if sessionID == w.activeID {
		w.history = append(w.history, chat.Message{Role: chat.RoleUser, Content: userText})
		if !assistant.IsEmpty() {
			w.history = append(w.history, chat.Message{Role: chat.RoleAssistant, Content: assistant.Content})
		}
	}
	w.persist.Schedule(sessionID)
}

// sealStreamLocked 流结束后定稿助手消息：占位消息存在则写入最终全文
// （此后不可再变），流中途没有任何片段时补一条完整消息。
// sealStreamLocked finalizes the assistant message after the stream
// closes: the placeholder (now immutable) gets the final text, or a
// full message is appended when no fragment ever arrived.
func (w *Workspace) sealStreamLocked(sess *storage.Session, placeholderID, content string) chat.Message {
	for i := range sess.Messages {
		if sess.Messages[i].ID == placeholderID {
			sess.Messages[i].Content = content
			return sess.Messages[i]
		}
	}
	msg := chat.NewMessage(chat.RoleAssistant, content)
	msg.ID = placeholderID
	sess.Messages = append(sess.Messages, msg)
	return msg
}

func (w *Workspace) recordErrorLocked(sess *storage.Session, placeholderID string, err error) {
	text := i18n.T("error.remote", err)
	for i := range sess.Messages {
		if sess.Messages[i].ID == placeholderID {
			sess.Messages[i].Content = text
			touch(sess)
			return
		}
	}
	sess.Messages = append(sess.Messages, chat.NewMessage(chat.RoleAssistant, text))
	touch(sess)
}

// builderPromptLocked 构建单次请求的提示词：嵌入插件名、描述和当前
// 完整代码。
// builderPromptLocked assembles the single-shot prompt embedding the
// plugin name, description, and the full current code.
func (w *Workspace) builderPromptLocked(idx int, instruction string) string {
	sess := w.sessions[idx]
	var b strings.Builder
	fmt.Fprintf(&b, "Plugin name: %s\n", sess.Name)
	if strings.TrimSpace(sess.Description) != "" {
		fmt.Fprintf(&b, "Plugin description: %s\n", sess.Description)
	}
	if strings.TrimSpace(sess.Code) != "" {
		fmt.Fprintf(&b, "\nCurrent plugin code:\n```php\n%s\n```\n", sess.Code)
	}
	fmt.Fprintf(&b, "\nInstruction: %s\n", instruction)
	return b.String()
}
