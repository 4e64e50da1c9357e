package grid

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/nhath/ezlite/internal/db"
	"github.com/nhath/ezlite/internal/viewstate"
)

func TestColumnWidths(t *testing.T) {
	widths := columnWidths(
		[]string{"id", "name", "bio"},
		[][]string{{"1", "ada", strings.Repeat("x", 80)}, {"22", "lovelace", "short"}},
	)
	assert.Equal(t, []int{4, 10, MaxColumnWidth}, widths)
}

func TestFromRowsRendersCells(t *testing.T) {
	columns := []db.Column{{Name: "id"}, {Name: "name"}}
	rows := viewstate.TransformRows([]db.RawRow{
		{{Name: "id", Value: int64(1)}, {Name: "name", Value: "ada"}},
		{{Name: "id", Value: int64(2)}, {Name: "name", Value: nil}},
	})

	view := FromRows(columns, rows, 0).View()
	assert.Contains(t, view, "name")
	assert.Contains(t, view, "ada")
	assert.Contains(t, view, "NULL")
	assert.Contains(t, view, "2 rows")
}

func TestFromQueryResult(t *testing.T) {
	view := FromQueryResult(&db.QueryResult{
		Columns:  []string{"n", "n"},
		Rows:     [][]string{{"1", "2"}},
		RowCount: 1,
		IsSelect: true,
		ExecTime: 3 * time.Millisecond,
	}, 0).View()
	assert.Contains(t, view, "1 row in 3ms")

	view = FromQueryResult(&db.QueryResult{AffectedRows: 1200}, 0).View()
	assert.Contains(t, view, "1,200")
}

func TestRowCount(t *testing.T) {
	assert.Equal(t, "0 rows", RowCount(0))
	assert.Equal(t, "1 row", RowCount(1))
	assert.Equal(t, "1,024 rows", RowCount(1024))
}

func TestNarrowGridKeepsFooterOnOneLine(t *testing.T) {
	view := FromQueryResult(&db.QueryResult{
		Columns:  []string{"n"},
		Rows:     [][]string{{"1"}},
		RowCount: 1,
		IsSelect: true,
		ExecTime: 1234 * time.Millisecond,
	}, 0).View()
	assert.Contains(t, view, "1 row in 1.234s")

	rows := viewstate.TransformRows([]db.RawRow{{{Name: "x", Value: int64(7)}}})
	view = FromRows([]db.Column{{Name: "x"}}, rows, 0).View()
	assert.Contains(t, view, "1 row")
}

func TestFitFooter(t *testing.T) {
	widths := []int{3, 3}
	fitFooter(widths, "12 rows in 40ms")
	// two columns and one separator hold the footer plus padding
	assert.Equal(t, 17, widths[0]+widths[1]+1)
	assert.Equal(t, 3, widths[0])

	widths = []int{20}
	fitFooter(widths, "1 row")
	assert.Equal(t, []int{20}, widths)

	fitFooter(nil, "1 row")
}

func TestFromLogs(t *testing.T) {
	view := FromLogs([]db.LogEntry{
		{Query: "SELECT\n  1", Time: time.Now().Add(-2 * time.Minute), Status: "success"},
		{Query: "SELEC 1", Time: time.Now(), Status: "error", Error: "syntax error"},
	}, 0).View()
	assert.Contains(t, view, "SELECT 1")
	assert.Contains(t, view, "2 minutes ago")
	assert.Contains(t, view, "error")
}

func TestGetValueStyle(t *testing.T) {
	tests := []struct {
		val  string
		want lipgloss.TerminalColor
	}{
		{"NULL", lipgloss.Color(ColorPurple)},
		{"3.14", lipgloss.Color(ColorPurple)},
		{"TRUE", lipgloss.Color(ColorOrange)},
		{"hello", lipgloss.Color(ColorYellow)},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			assert.Equal(t, tt.want, GetValueStyle(tt.val).GetForeground())
		})
	}
	assert.True(t, GetValueStyle("").GetItalic())
}
