// Package highlight colors SQL for the terminal.
package highlight

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// DefaultStyle is used when no chroma style is configured
const DefaultStyle = "nord"

// SQL returns sql with ANSI colors from the named chroma style.
// The input comes back unchanged if highlighting fails.
func SQL(sql, style string) string {
	if strings.TrimSpace(sql) == "" {
		return sql
	}
	if style == "" {
		style = DefaultStyle
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, sql, "sql", "terminal256", style); err != nil {
		return sql
	}
	return strings.TrimRight(buf.String(), "\n")
}
