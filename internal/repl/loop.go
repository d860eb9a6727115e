package repl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"workbench/internal/chat"
	"workbench/internal/i18n"
	"workbench/internal/workspace"

	"github.com/chzyer/readline"
)

// ANSI colors for the prompt
const (
	ansiReset = "\x1b[0m"
	ansiDim   = "\x1b[90m"
	ansiGreen = "\x1b[32m"
	ansiCyan  = "\x1b[36m"
	ansiRed   = "\x1b[31m"
)

// Loop 基于 readline 的行模式前端，驱动同一个工作区
// Loop is the readline line-mode front end over the same workspace
type Loop struct {
	ws     *workspace.Workspace
	locale *i18n.I18n
}

// NewLoop 创建 REPL / NewLoop builds a REPL over a workspace
func NewLoop(ws *workspace.Workspace) *Loop {
	return &Loop{ws: ws, locale: i18n.Global()}
}

// Run 运行 REPL：读取一行，斜杠命令本地处理，普通文本发给引擎并
// 流式打印。凭据缺失时直接退出并给出可操作的提示。
// Run runs the REPL: slash commands are handled locally, plain lines
// go to the engine with streamed output. A missing credential exits
// with the actionable notice.
func (l *Loop) Run() error {
	if err := l.ws.CredentialError(); err != nil {
		return err
	}

	rl, err := readline.New(l.prompt())
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			l.ws.Flush()
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := l.handleCommand(rl, line); quit {
				l.ws.Flush()
				return nil
			}
			rl.SetPrompt(l.prompt())
			continue
		}

		l.send(line)
		rl.SetPrompt(l.prompt())
	}
}

func (l *Loop) send(text string) {
	err := l.ws.Send(context.Background(), text, func(chunk string) {
		fmt.Print(chunk)
	})
	if err != nil {
		fmt.Printf("%s%v%s\n", ansiRed, err, ansiReset)
		return
	}

	if l.ws.Variant() == workspace.VariantChat {
		fmt.Println()
		return
	}

	// 单次响应（构建器）没有流式输出，补打最后一条助手消息
	// Single-shot responses (builder) have no stream; print the final
	// assistant message instead
	messages := l.ws.Active().Messages
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		if last.Role == chat.RoleAssistant {
			fmt.Println(last.Content)
		}
	}
}

func (l *Loop) handleCommand(rl *readline.Instance, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd := fields[0]
	arg := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/new":
		sess := l.ws.NewSession()
		fmt.Printf("%s%s %s%s\n", ansiDim, l.locale.T("session.new"), sess.ID, ansiReset)
	case "/sessions":
		active := l.ws.ActiveID()
		for i, sess := range l.ws.Sessions() {
			marker := " "
			if sess.ID == active {
				marker = "*"
			}
			fmt.Printf("%s %d. %s %s(%s)%s\n", marker, i+1, sess.Label(), ansiDim, sess.ID, ansiReset)
		}
	case "/switch":
		l.switchTo(arg)
	case "/delete":
		l.deleteSession(rl, arg)
	case "/name":
		l.ws.SetName(arg)
	case "/desc":
		l.ws.SetDescription(arg)
	case "/code":
		code := l.ws.Active().Code
		if strings.TrimSpace(code) == "" {
			fmt.Printf("%s(no code yet)%s\n", ansiDim, ansiReset)
		} else {
			fmt.Println(code)
		}
	default:
		fmt.Printf("%sunknown command %s%s\n", ansiDim, cmd, ansiReset)
	}
	return false
}

// switchTo 支持按序号或会话 ID 切换
// switchTo accepts a list index or a session id
func (l *Loop) switchTo(arg string) {
	if arg == "" {
		return
	}
	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		sessions := l.ws.Sessions()
		if n < 1 || n > len(sessions) {
			fmt.Printf("%sno session %d%s\n", ansiDim, n, ansiReset)
			return
		}
		id = sessions[n-1].ID
	}
	if err := l.ws.SwitchTo(id); err != nil {
		fmt.Printf("%s%v%s\n", ansiRed, err, ansiReset)
	}
}

// deleteSession 删除前要求确认 / deleteSession confirms before deleting
func (l *Loop) deleteSession(rl *readline.Instance, arg string) {
	id := arg
	if id == "" {
		id = l.ws.ActiveID()
	}
	label := ""
	for _, sess := range l.ws.Sessions() {
		if sess.ID == id {
			label = sess.Label()
		}
	}
	if label == "" {
		fmt.Printf("%s%v%s\n", ansiRed, workspace.ErrSessionNotFound, ansiReset)
		return
	}

	rl.SetPrompt(l.locale.T("session.confirm_delete", label) + " ")
	answer, err := rl.Readline()
	rl.SetPrompt(l.prompt())
	if err != nil {
		return
	}
	if strings.ToLower(strings.TrimSpace(answer)) != "y" {
		return
	}
	if err := l.ws.Delete(id); err != nil {
		fmt.Printf("%s%v%s\n", ansiRed, err, ansiReset)
		return
	}
	fmt.Printf("%s%s%s\n", ansiDim, l.locale.T("session.deleted"), ansiReset)
}

func (l *Loop) prompt() string {
	label := l.ws.Active().Label()
	return fmt.Sprintf("%s%s%s %s›%s ", ansiCyan, label, ansiReset, ansiGreen, ansiReset)
}
