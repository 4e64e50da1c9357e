// internal/ui/render.go
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/nhath/ezlite/internal/ui/components/grid"
	"github.com/nhath/ezlite/internal/ui/highlight"
	"github.com/nhath/ezlite/internal/ui/icons"
	"github.com/nhath/ezlite/internal/viewstate"
)

const (
	statusHeight = 2
	tabsHeight   = 1
)

// View renders the sidebar, the active tab and the status bar
func (m Model) View() string {
	if m.width == 0 {
		return m.spinner.View() + " starting"
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderMain())
	main := lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar(), m.help.View(m.keys))

	if m.focus == FocusSetup {
		main = overlay.Composite(m.renderSetup(), main, overlay.Center, overlay.Center, 0, 0)
	}
	if m.popupErr != nil {
		main = m.renderErrorPopup(main)
	}
	return main
}

func (m Model) contentHeight() int {
	return max(m.height-statusHeight-1, 3)
}

func (m Model) renderSidebar() string {
	s := m.snap
	width := max(s.SidebarWidth-4, 1)

	var b strings.Builder
	title := s.DatabaseName
	if title == "" {
		title = "no database"
	}
	b.WriteString(SidebarTitleStyle.Render(truncate(icons.IconSQLite+" "+title, width)))
	b.WriteString("\n")
	if s.DatabaseVersion != "" {
		b.WriteString(MetaStyle.Render("SQLite " + s.DatabaseVersion))
	}
	b.WriteString("\n\n")

	for _, t := range s.Tables {
		selected := t.Name == s.SelectedTable
		line := truncate(icons.TableIcon(selected)+" "+t.Name, width)
		if selected {
			b.WriteString(SelectedItemStyle.Render(line))
		} else {
			b.WriteString(TableItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return SidebarStyle.
		Width(width).
		Height(m.contentHeight() - 2).
		Render(b.String())
}

func (m Model) renderMain() string {
	s := m.snap
	width := max(s.GridWidth, 10)

	var tabs []string
	for _, v := range viewstate.Views {
		if v == s.View {
			tabs = append(tabs, ActiveTabStyle.Render(v.String()))
		} else {
			tabs = append(tabs, TabStyle.Render(v.String()))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var body string
	switch s.View {
	case viewstate.ContentView:
		body = m.renderContent(width)
	case viewstate.StructureView:
		body = m.renderStructure()
	case viewstate.QueryView:
		body = m.renderQuery(width)
	case viewstate.LogsView:
		body = m.renderLogs(width)
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(m.contentHeight()).
		MaxHeight(m.contentHeight()).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

func (m Model) renderContent(width int) string {
	s := m.snap
	if s.SelectedTable == "" {
		return MetaStyle.Render(emptyMessage(s))
	}
	if s.Rows == nil {
		return m.spinner.View() + " loading " + s.SelectedTable
	}
	return grid.FromRows(s.TableColumns, s.Rows, width).View()
}

func (m Model) renderStructure() string {
	s := m.snap
	if s.SelectedTable == "" {
		return MetaStyle.Render(emptyMessage(s))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		grid.FromSchemaColumns(s.TableColumns).View(),
		m.definition.View(),
	)
}

func (m Model) renderDefinition() string {
	if m.snap.TableDefinition == "" {
		return ""
	}
	return highlight.SQL(m.snap.TableDefinition, m.style)
}

func (m Model) renderQuery(width int) string {
	s := m.snap
	input := m.query.View()
	if m.focus != FocusQuery && s.LastQuery != "" {
		input = PromptStyle.Render("SQL>") + highlight.SQL(s.LastQuery, m.style)
	}
	if s.QueryResult == nil {
		return lipgloss.JoinVertical(lipgloss.Left, input, MetaStyle.Render("press i to type a query, enter to run it"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, input, grid.FromQueryResult(s.QueryResult, width).View())
}

func (m Model) renderLogs(width int) string {
	if len(m.snap.Logs) == 0 {
		return MetaStyle.Render("no statements yet")
	}
	return grid.FromLogs(m.snap.Logs, width).View()
}

func (m Model) renderStatusBar() string {
	s := m.snap
	var parts []string

	state := StateStyle.Render(strings.ToUpper(s.State.String()))
	if s.IsLoading {
		state = LoadingStyle.Render(m.spinner.View() + " " + strings.ToUpper(s.State.String()))
	}
	parts = append(parts, state)

	if c := s.SelectedConnection; c != nil {
		parts = append(parts, ConnectionStyle.Render(fmt.Sprintf("%s %s", icons.IconSQLite, c.Name)))
	}
	if s.SelectedTable != "" && s.Rows != nil {
		parts = append(parts, MetaStyle.Render(s.SelectedTable+" · "+grid.RowCount(len(s.Rows))))
	}
	if n := len(s.Connections); n > 1 {
		parts = append(parts, MetaStyle.Render(fmt.Sprintf("%d databases", n)))
	}
	if warns, errs := m.logger.Counts(); warns+errs > 0 {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%s %d warnings, %d errors", icons.IconError, warns, errs)))
	}
	if s.LastError != nil {
		parts = append(parts, ErrorStyle.Render(truncate(s.LastError.Error(), 60)))
	}

	return StatusBarStyle.Width(m.width).Render(strings.Join(parts, icons.IconSeparator))
}

func (m Model) renderSetup() string {
	var b strings.Builder
	b.WriteString(SidebarTitleStyle.Render("Open a SQLite database"))
	b.WriteString("\n\n")
	b.WriteString(m.setup.View())
	if m.setupErr != nil {
		b.WriteString("\n\n")
		b.WriteString(ErrorStyle.Render(icons.IconError + " " + m.setupErr.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(MetaStyle.Render("enter to open, esc to cancel"))

	return SidebarStyle.
		BorderForeground(accentColor).
		Padding(1, 2).
		Width(min(max(m.width-10, 20), 80)).
		Render(b.String())
}

func (m Model) renderErrorPopup(main string) string {
	box := PopupStyle.
		Width(min(max(m.width-10, 20), 70)).
		Render(ErrorStyle.Render(icons.IconError+" Error") + "\n\n" + m.popupErr.Error() + "\n\n" + MetaStyle.Render("press any key"))
	return overlay.Composite(box, main, overlay.Center, overlay.Center, 0, 0)
}

func emptyMessage(s viewstate.Snapshot) string {
	switch s.State {
	case viewstate.NoConnections:
		return "no databases yet, press a to add one"
	case viewstate.InitialLoad:
		return "loading tables"
	case viewstate.Ready:
		if len(s.Tables) == 0 {
			return "this database has no tables"
		}
		return "select a table"
	default:
		return "waiting for a database"
	}
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
