package viewstate

import "strings"

// splitStatements splits SQL on semicolons outside quotes and comments.
// SQLite escapes a quote by doubling it, which toggles twice and needs no
// special case.
func splitStatements(query string) []string {
	var statements []string
	var current strings.Builder
	var quote byte
	inLineComment := false

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for i := 0; i < len(query); i++ {
		c := query[i]

		switch {
		case inLineComment:
			if c == '\n' {
				inLineComment = false
			}
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			inLineComment = true
		case c == ';':
			flush()
			continue
		}

		current.WriteByte(c)
	}

	// Don't forget the last statement
	flush()
	return statements
}
