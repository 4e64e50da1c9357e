// Package grid builds the bubble-table models shown in the content pane.
package grid

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	bbtable "github.com/evertras/bubble-table/table"

	"github.com/nhath/ezlite/internal/db"
	"github.com/nhath/ezlite/internal/viewstate"
)

// Nord colors
const (
	ColorForeground = "#D8DEE9"
	ColorComment    = "#4C566A"
	ColorGreen      = "#A3BE8C"
	ColorOrange     = "#D08770"
	ColorPurple     = "#B48EAD"
	ColorRed        = "#BF616A"
	ColorYellow     = "#EBCB8B"
	ColorTeal       = "#8FBCBB"
)

// MaxColumnWidth caps a single column
const MaxColumnWidth = 40

// PageSize is the number of rows per page
const PageSize = 20

// New creates a bubble-table with the Nord theme
func New(cols []bbtable.Column) bbtable.Model {
	return bbtable.New(cols).
		WithBaseStyle(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorForeground))).
		HeaderStyle(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorTeal)).
			Bold(true)).
		HighlightStyle(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorGreen)).
			Bold(true)).
		Focused(true).
		BorderRounded()
}

// FromRows builds the content grid of a table. Cells are matched to
// columns by position.
func FromRows(columns []db.Column, rows []viewstate.Row, width int) bbtable.Model {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Name
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = make([]string, len(r.Values))
		for j, v := range r.Values {
			cells[i][j] = db.FormatValue(v)
		}
	}

	return build(headers, cells, RowCount(len(rows)), width)
}

// RowCount formats n as "1 row" or "1,024 rows"
func RowCount(n int) string {
	return humanize.Comma(int64(n)) + " " + humanize.PluralWord(n, "row", "")
}

// FromQueryResult builds a grid for the result of a typed query
func FromQueryResult(res *db.QueryResult, width int) bbtable.Model {
	if res == nil {
		return bbtable.New(nil)
	}
	if !res.IsSelect {
		return New([]bbtable.Column{bbtable.NewColumn(key(0), "Affected rows", 16)}).
			WithRows([]bbtable.Row{bbtable.NewRow(bbtable.RowData{key(0): humanize.Comma(res.AffectedRows)})})
	}

	footer := fmt.Sprintf("%s in %s", RowCount(res.RowCount), res.ExecTime.Round(time.Millisecond))
	return build(res.Columns, res.Rows, footer, width)
}

// FromSchemaColumns builds a grid for table column metadata
func FromSchemaColumns(cols []db.Column) bbtable.Model {
	headers := []string{"Name", "Type", "Null", "Key", "Default"}
	var rowsData [][]string
	for _, c := range cols {
		nullStr := "YES"
		if !c.Nullable {
			nullStr = "NO"
		}
		rowsData = append(rowsData, []string{c.Name, c.Type, nullStr, c.Key, c.Default})
	}

	widths := columnWidths(headers, rowsData)
	tableCols := make([]bbtable.Column, len(headers))
	for i, h := range headers {
		tableCols[i] = bbtable.NewColumn(h, h, widths[i])
	}

	var rows []bbtable.Row
	for _, rd := range rowsData {
		rows = append(rows, bbtable.NewRow(bbtable.RowData{
			"Name":    rd[0],
			"Type":    rd[1],
			"Null":    rd[2],
			"Key":     bbtable.NewStyledCell(rd[3], lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow))),
			"Default": rd[4],
		}))
	}

	return New(tableCols).WithRows(rows).WithNoPagination()
}

// FromLogs builds the statement log grid, newest first as given
func FromLogs(logs []db.LogEntry, width int) bbtable.Model {
	headers := []string{"When", "Took", "Status", "Query"}
	rowsData := make([][]string, len(logs))
	for i, l := range logs {
		rowsData[i] = []string{humanize.Time(l.Time), l.Duration.String(), l.Status, oneLine(l.Query)}
	}

	widths := columnWidths(headers, rowsData)
	cols := make([]bbtable.Column, len(headers))
	for i, h := range headers {
		cols[i] = bbtable.NewColumn(key(i), h, widths[i])
	}

	rows := make([]bbtable.Row, len(rowsData))
	for i, rd := range rowsData {
		status := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen))
		if logs[i].Status != "success" {
			status = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed))
		}
		rows[i] = bbtable.NewRow(bbtable.RowData{
			key(0): bbtable.NewStyledCell(rd[0], lipgloss.NewStyle().Foreground(lipgloss.Color(ColorComment))),
			key(1): rd[1],
			key(2): bbtable.NewStyledCell(rd[2], status),
			key(3): rd[3],
		})
	}

	return limit(New(cols).WithRows(rows).WithPageSize(PageSize), width)
}

func build(headers []string, cells [][]string, footer string, width int) bbtable.Model {
	widths := columnWidths(headers, cells)
	fitFooter(widths, footer)
	cols := make([]bbtable.Column, len(headers))
	for i, h := range headers {
		cols[i] = bbtable.NewColumn(key(i), h, widths[i])
	}

	rows := make([]bbtable.Row, len(cells))
	for i, r := range cells {
		data := bbtable.RowData{}
		for j, val := range r {
			if j < len(headers) {
				data[key(j)] = bbtable.NewStyledCell(val, GetValueStyle(val))
			}
		}
		rows[i] = bbtable.NewRow(data)
	}

	return limit(New(cols).WithRows(rows).WithPageSize(PageSize).WithStaticFooter(footer), width)
}

// fitFooter widens the last column so the footer fits on one line.
// The footer spans the columns and the separators between them.
func fitFooter(widths []int, footer string) {
	if len(widths) == 0 {
		return
	}
	inner := len(widths) - 1
	for _, w := range widths {
		inner += w
	}
	if need := lipgloss.Width(footer) + 2; inner < need {
		widths[len(widths)-1] += need - inner
	}
}

func limit(m bbtable.Model, width int) bbtable.Model {
	if width > 0 {
		m = m.WithMaxTotalWidth(width)
	}
	return m
}

// key is positional so duplicate column names in a result stay distinct
func key(i int) string {
	return "c" + strconv.Itoa(i)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// columnWidths sizes each column to its widest cell plus padding, capped
func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if i < len(headers) {
				widths[i] = max(widths[i], lipgloss.Width(val))
			}
		}
	}
	for i := range widths {
		widths[i] = min(widths[i]+2, MaxColumnWidth)
	}
	return widths
}

// GetValueStyle returns a lipgloss style based on value content
func GetValueStyle(val string) lipgloss.Style {
	if val == "" || val == "NULL" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPurple)).Italic(true)
	}
	if _, err := strconv.ParseFloat(val, 64); err == nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPurple))
	}
	lower := strings.ToLower(val)
	if lower == "true" || lower == "false" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorOrange))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow))
}
