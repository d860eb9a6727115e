package tui

import (
	"fmt"
	"strings"

	"workbench/internal/chat"
	"workbench/internal/storage"

	"github.com/charmbracelet/glamour"
)

// renderMessages 将会话消息渲染为聊天面板内容。助手消息经 glamour
// 渲染 Markdown，渲染失败时回退到原文。
// renderMessages renders session messages into chat panel content.
// Assistant markdown goes through glamour, falling back to raw text
// when rendering fails.
func (a *App) renderMessages(sess storage.Session) string {
	var b strings.Builder
	for _, msg := range sess.Messages {
		label := a.theme.AssistantStyle.Render("assistant")
		if msg.Role == chat.RoleUser {
			label = a.theme.UserStyle.Render("you")
		}
		ts := ""
		if msg.Timestamp != "" {
			ts = " " + a.theme.MutedStyle.Render(msg.Timestamp)
		}
		b.WriteString(label + ts + "\n")
		b.WriteString(a.renderBody(msg) + "\n\n")
	}
	return b.String()
}

func (a *App) renderBody(msg chat.Message) string {
	if msg.Role != chat.RoleAssistant {
		return msg.Content
	}
	rendered, err := a.renderMarkdown(msg.Content)
	if err != nil {
		return msg.Content
	}
	return rendered
}

func (a *App) renderMarkdown(text string) (string, error) {
	if a.mdRenderer == nil {
		width := a.chatView.Width
		if width <= 0 {
			width = 80
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		a.mdRenderer = r
	}
	out, err := a.mdRenderer.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// renderSidebar 渲染会话列表，活动会话高亮
// renderSidebar renders the session list with the active one
// highlighted
func (a *App) renderSidebar(sessions []storage.Session, activeID string) string {
	var b strings.Builder
	b.WriteString(a.theme.TitleStyle.Render(a.locale.T("sidebar.sessions")) + "\n\n")
	for i, sess := range sessions {
		label := truncate(sess.Label(), a.sidebarWidth()-6)
		line := fmt.Sprintf("%d. %s", i+1, label)
		if sess.ID == activeID {
			line = a.theme.ActiveStyle.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + a.theme.MutedStyle.Render(a.locale.T("sidebar.model")+": "+a.modelName))
	return b.String()
}

func truncate(s string, max int) string {
	if max <= 3 {
		max = 3
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
