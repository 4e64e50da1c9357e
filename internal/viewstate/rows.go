package viewstate

import "github.com/nhath/ezlite/internal/db"

// Row is a table row prepared for display
type Row struct {
	Key    any
	Values []any
}

// TransformRows turns provider rows into display rows. The key of the i-th
// row is the value of its own i-th field, nil when the row is shorter than
// that. Binary values are left out of Values.
//
// Key is positional, not a primary key. Do not use it as a row identity.
func TransformRows(raw []db.RawRow) []Row {
	rows := make([]Row, len(raw))
	for i, r := range raw {
		rows[i] = Row{Key: rowKey(r, i), Values: displayable(r)}
	}
	return rows
}

func rowKey(r db.RawRow, i int) any {
	if i < len(r) {
		return r[i].Value
	}
	return nil
}

func displayable(r db.RawRow) []any {
	values := make([]any, 0, len(r))
	for _, f := range r {
		if _, ok := f.Value.([]byte); ok {
			continue
		}
		values = append(values, f.Value)
	}
	return values
}
