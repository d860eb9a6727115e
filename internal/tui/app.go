package tui

import (
	"context"

	"workbench/internal/i18n"
	"workbench/internal/workspace"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// --- Tea Messages ---

// FragmentMsg 一个流式片段已应用到工作区
// FragmentMsg signals a streaming fragment was applied
type FragmentMsg struct{}

// SendDoneMsg 一次发送完成 / SendDoneMsg signals a send completed
type SendDoneMsg struct{ Err error }

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	ws *workspace.Workspace

	// 布局 / Layout
	width  int
	height int

	// 组件 / Components
	chatView viewport.Model
	input    textarea.Model

	// 状态 / State
	confirmDeleteID string
	lastError       string
	fragments       chan string

	// 发送上下文，退出时取消在途请求
	// Send context, canceled on quit so in-flight requests unwind
	ctx    context.Context
	cancel context.CancelFunc

	// 配置 / Config
	modelName  string
	theme      Theme
	keys       KeyMap
	locale     *i18n.I18n
	mdRenderer *glamour.TermRenderer
}

// NewApp 创建 TUI 应用
// NewApp creates a new TUI application
func NewApp(ws *workspace.Workspace, modelName string) App {
	ta := textarea.New()
	ta.Placeholder = i18n.T("input.placeholder")
	ta.CharLimit = 8192
	ta.SetHeight(3)
	ta.Focus()

	ctx, cancel := context.WithCancel(context.Background())
	return App{
		ws:        ws,
		ctx:       ctx,
		cancel:    cancel,
		input:     ta,
		modelName: modelName,
		theme:     DarkTheme(),
		keys:      DefaultKeyMap(),
		locale:    i18n.Global(),
	}
}

func (a App) Init() tea.Cmd {
	return textarea.Blink
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		a.mdRenderer = nil // 宽度变化后重建 / rebuild after width change
		a.refreshChat()

	case tea.KeyMsg:
		// 删除确认模态优先 / Delete confirmation modal first
		if a.confirmDeleteID != "" {
			switch msg.String() {
			case "y", "Y":
				if err := a.ws.Delete(a.confirmDeleteID); err != nil {
					a.lastError = err.Error()
				}
				a.confirmDeleteID = ""
				a.refreshChat()
			default:
				a.confirmDeleteID = ""
			}
			return a, nil
		}

		switch {
		case key.Matches(msg, a.keys.Quit):
			a.cancel()
			a.ws.Flush()
			return a, tea.Quit
		case key.Matches(msg, a.keys.NewSession):
			a.ws.NewSession()
			a.refreshChat()
			return a, nil
		case key.Matches(msg, a.keys.NextSession):
			a.cycleSession(1)
			return a, nil
		case key.Matches(msg, a.keys.PrevSession):
			a.cycleSession(-1)
			return a, nil
		case key.Matches(msg, a.keys.Delete):
			a.confirmDeleteID = a.ws.ActiveID()
			return a, nil
		case key.Matches(msg, a.keys.ScrollUp):
			a.chatView.HalfViewUp()
			return a, nil
		case key.Matches(msg, a.keys.ScrollDown):
			a.chatView.HalfViewDown()
			return a, nil
		case key.Matches(msg, a.keys.Submit):
			return a.submit()
		}

	case FragmentMsg:
		a.refreshChat()
		cmds = append(cmds, a.waitFragment())

	case SendDoneMsg:
		if msg.Err != nil {
			a.lastError = msg.Err.Error()
		}
		a.fragments = nil
		a.input.Focus()
		a.refreshChat()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	a.chatView, cmd = a.chatView.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// submit 发送输入框内容。在途请求期间输入被禁用，不会产生并发发送。
// submit sends the input box content. Input is disabled while a
// request is in flight, so sends never overlap.
func (a App) submit() (tea.Model, tea.Cmd) {
	if a.ws.Loading() || a.ws.CredentialError() != nil {
		return a, nil
	}
	text := a.input.Value()
	if text == "" {
		return a, nil
	}
	a.input.Reset()
	a.input.Blur()
	a.lastError = ""

	frags := make(chan string, 16)
	a.fragments = frags
	a.refreshChat()

	send := func() tea.Msg {
		err := a.ws.Send(a.ctx, text, func(chunk string) {
			frags <- chunk
		})
		close(frags)
		return SendDoneMsg{Err: err}
	}
	return a, tea.Batch(send, a.waitFragment())
}

func (a *App) waitFragment() tea.Cmd {
	frags := a.fragments
	if frags == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-frags; ok {
			return FragmentMsg{}
		}
		return nil
	}
}

func (a *App) cycleSession(delta int) {
	sessions := a.ws.Sessions()
	if len(sessions) == 0 {
		return
	}
	active := a.ws.ActiveID()
	idx := 0
	for i := range sessions {
		if sessions[i].ID == active {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(sessions)) % len(sessions)
	if err := a.ws.SwitchTo(sessions[idx].ID); err == nil {
		a.refreshChat()
	}
}

func (a *App) layout() {
	chatWidth := a.width - a.sidebarWidth() - 6
	if chatWidth < 20 {
		chatWidth = 20
	}
	chatHeight := a.height - 8
	if chatHeight < 5 {
		chatHeight = 5
	}
	a.chatView = viewport.New(chatWidth, chatHeight)
	a.input.SetWidth(chatWidth)
}

func (a *App) sidebarWidth() int {
	w := a.width / 4
	if w < 24 {
		w = 24
	}
	return w
}

func (a *App) refreshChat() {
	a.chatView.SetContent(a.renderMessages(a.ws.Active()))
	a.chatView.GotoBottom()
}

func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	sidebar := a.theme.SidebarStyle.
		Width(a.sidebarWidth()).
		Height(a.chatView.Height + 2).
		Render(a.renderSidebar(a.ws.Sessions(), a.ws.ActiveID()))

	chat := a.theme.PanelStyle.Render(a.chatView.View())
	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chat)

	inputView := a.theme.InputStyle.Render(a.input.View())

	status := a.locale.T("status.ready")
	if a.ws.Loading() {
		status = a.locale.T("status.streaming")
	}
	statusBar := a.theme.StatusBarStyle.Render(status)
	if a.lastError != "" {
		statusBar = a.theme.ErrorStyle.Render(a.lastError)
	}

	parts := []string{main, inputView, statusBar}

	if err := a.ws.CredentialError(); err != nil {
		banner := a.theme.BannerStyle.Render(a.locale.T("error.no_credential"))
		parts = append([]string{banner}, parts...)
	}
	if a.confirmDeleteID != "" {
		label := a.ws.Active().Label()
		parts = append(parts, a.theme.ErrorStyle.Render(a.locale.T("session.confirm_delete", label)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
