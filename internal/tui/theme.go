package tui

import "github.com/charmbracelet/lipgloss"

// Theme 定义 TUI 主题色彩和样式
// Theme defines TUI colors and styles
type Theme struct {
	// 基础色 / Base colors
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Danger  lipgloss.Color
	Success lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Border  lipgloss.Color

	// 预构建样式 / Pre-built styles
	TitleStyle     lipgloss.Style
	SidebarStyle   lipgloss.Style
	PanelStyle     lipgloss.Style
	InputStyle     lipgloss.Style
	StatusBarStyle lipgloss.Style
	ErrorStyle     lipgloss.Style
	MutedStyle     lipgloss.Style
	UserStyle      lipgloss.Style
	AssistantStyle lipgloss.Style
	ActiveStyle    lipgloss.Style
	BannerStyle    lipgloss.Style
}

// DarkTheme 暗色主题（默认）
// DarkTheme is the default dark theme
func DarkTheme() Theme {
	t := Theme{
		Primary: lipgloss.Color("#7C3AED"),
		Accent:  lipgloss.Color("#F59E0B"),
		Danger:  lipgloss.Color("#EF4444"),
		Success: lipgloss.Color("#10B981"),
		Muted:   lipgloss.Color("#6B7280"),
		Text:    lipgloss.Color("#E5E7EB"),
		Border:  lipgloss.Color("#374151"),
	}
	t.TitleStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	t.SidebarStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.InputStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary)
	t.StatusBarStyle = lipgloss.NewStyle().Foreground(t.Muted)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(t.Danger)
	t.MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	t.UserStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	t.AssistantStyle = lipgloss.NewStyle().Foreground(t.Success).Bold(true)
	t.ActiveStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	t.BannerStyle = lipgloss.NewStyle().
		Foreground(t.Danger).
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Danger).
		Padding(0, 1)
	return t
}
