// internal/ui/styles.go
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/nhath/ezlite/internal/config"
)

var (
	textPrimary    lipgloss.Color
	textSecondary  lipgloss.Color
	textFaint      lipgloss.Color
	accentColor    lipgloss.Color
	successColor   lipgloss.Color
	errorColor     lipgloss.Color
	highlightColor lipgloss.Color
	borderColor    lipgloss.Color

	syntaxStyle string

	StatusBarStyle    lipgloss.Style
	StateStyle        lipgloss.Style
	LoadingStyle      lipgloss.Style
	ConnectionStyle   lipgloss.Style
	MetaStyle         lipgloss.Style
	SidebarStyle      lipgloss.Style
	SidebarTitleStyle lipgloss.Style
	TableItemStyle    lipgloss.Style
	SelectedItemStyle lipgloss.Style
	TabStyle          lipgloss.Style
	ActiveTabStyle    lipgloss.Style
	PaneStyle         lipgloss.Style
	PromptStyle       lipgloss.Style
	SuccessStyle      lipgloss.Style
	ErrorStyle        lipgloss.Style
	PopupStyle        lipgloss.Style
)

// InitStyles initializes the global styles from the configured theme
func InitStyles(theme config.Theme) {
	textPrimary = lipgloss.Color(theme.TextPrimary)
	textSecondary = lipgloss.Color(theme.TextSecondary)
	textFaint = lipgloss.Color(theme.TextFaint)
	accentColor = lipgloss.Color(theme.Accent)
	successColor = lipgloss.Color(theme.Success)
	errorColor = lipgloss.Color(theme.Error)
	highlightColor = lipgloss.Color(theme.Highlight)
	borderColor = lipgloss.Color(theme.BorderColor)
	syntaxStyle = theme.SyntaxStyle

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(textSecondary)

	StateStyle = lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Background(successColor).
		Foreground(lipgloss.Color("#000000"))

	LoadingStyle = StateStyle.
		Background(accentColor)

	ConnectionStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(textPrimary)

	MetaStyle = lipgloss.NewStyle().
		Foreground(textFaint).
		Italic(true)

	SidebarStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1)

	SidebarTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor)

	TableItemStyle = lipgloss.NewStyle().
		Foreground(textPrimary)

	SelectedItemStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#000000")).
		Background(highlightColor).
		Bold(true)

	TabStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(textFaint)

	ActiveTabStyle = TabStyle.
		Foreground(accentColor).
		Bold(true).
		Underline(true)

	PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)

	PromptStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		MarginRight(1)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true)

	PopupStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(errorColor).
		Padding(1, 2)
}

func init() {
	InitStyles(config.DefaultConfig().Theme)
}
