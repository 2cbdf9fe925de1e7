package cli

import "github.com/charmbracelet/lipgloss"

// 配色沿用 Booky 网页端的蓝/玫红主色
const (
	colorAccent  = "#1C65DA"
	colorMuted   = "#717680"
	colorSuccess = "#079455"
	colorDanger  = "#D9206E"
	colorRating  = "#FDB022"
)

// styles 命令输出样式
type styles struct {
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Danger   lipgloss.Style
	Rating   lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Box      lipgloss.Style
}

func newStyles() styles {
	return styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent)),
		Heading: lipgloss.NewStyle().
			Bold(true).
			Underline(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted)),
		Accent: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccent)),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess)).
			Bold(true),
		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorDanger)).
			Bold(true),
		Rating: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorRating)),
		Cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccent)).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess)),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorAccent)).
			Padding(0, 1),
	}
}
