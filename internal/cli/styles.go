package cli

import "github.com/charmbracelet/lipgloss"

var (
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

var stateStyles = map[string]lipgloss.Style{
	"none":        dimStyle,
	"generated":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")),
	"completed":   lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
	"revised":     lipgloss.NewStyle().Foreground(lipgloss.Color("#9C27B0")),
	"transcribed": lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
	"archived":    dimStyle,
}
