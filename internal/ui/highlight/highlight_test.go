package highlight

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestSQLKeepsText(t *testing.T) {
	query := "SELECT id, name FROM users WHERE id = 1"
	out := SQL(query, "monokai")
	assert.Contains(t, out, "\x1b[")
	assert.Equal(t, query, strings.TrimSpace(ansi.Strip(out)))
}

func TestSQLBlank(t *testing.T) {
	assert.Equal(t, "", SQL("", ""))
	assert.Equal(t, "  ", SQL("  ", ""))
}
