// Package styles provides reusable lipgloss-based CLI rendering.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme holds lipgloss colors and styles for CLI output.
type Theme struct {
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Success lipgloss.Color

	Title     lipgloss.Style
	Normal    lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style

	Badge      lipgloss.Style
	BadgeMuted lipgloss.Style
}

// NewTheme returns the default dark theme.
func NewTheme() *Theme {
	t := &Theme{
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#909090"),
		Accent:  lipgloss.Color("#4ade80"),
		Error:   lipgloss.Color("#ef4444"),
		Warning: lipgloss.Color("#f59e0b"),
		Success: lipgloss.Color("#4ade80"),
	}

	t.Title = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	t.Normal = lipgloss.NewStyle().Foreground(t.Text)
	t.Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	t.Highlight = lipgloss.NewStyle().Foreground(t.Accent)

	t.Badge = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#0a0a0b")).
		Background(t.Accent).
		Padding(0, 1)
	t.BadgeMuted = lipgloss.NewStyle().
		Foreground(t.Muted).
		Padding(0, 1)

	return t
}

// BlockedBadge renders the decision badge for a blocked request.
func (t *Theme) BlockedBadge() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#0a0a0b")).
		Background(t.Error).
		Bold(true).
		Padding(0, 1).
		Render("BLOCKED")
}

// AllowedBadge renders the decision badge for an allowed request.
func (t *Theme) AllowedBadge() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#0a0a0b")).
		Background(t.Success).
		Bold(true).
		Padding(0, 1).
		Render("ALLOWED")
}

// EnabledBadge renders a list enablement badge.
func (t *Theme) EnabledBadge(enabled bool) string {
	if enabled {
		return t.Badge.Render("enabled")
	}
	return t.BadgeMuted.Render("disabled")
}
