package viewstate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhath/ezlite/internal/db"
)

func TestTransformRows(t *testing.T) {
	raw := []db.RawRow{
		{{Name: "id", Value: int64(10)}, {Name: "name", Value: "ada"}, {Name: "avatar", Value: []byte{1, 2}}},
		{{Name: "id", Value: int64(11)}, {Name: "name", Value: nil}, {Name: "avatar", Value: nil}},
		{{Name: "id", Value: int64(12)}, {Name: "name", Value: "cy"}, {Name: "avatar", Value: []byte{}}},
		{{Name: "id", Value: int64(13)}, {Name: "name", Value: "dee"}, {Name: "avatar", Value: nil}},
	}

	rows := TransformRows(raw)

	// keys follow the row's position, not a key column
	assert.Equal(t, []any{int64(10), nil, []byte{}, nil}, []any{rows[0].Key, rows[1].Key, rows[2].Key, rows[3].Key})

	assert.Equal(t, []any{int64(10), "ada"}, rows[0].Values)
	assert.Equal(t, []any{int64(11), nil, nil}, rows[1].Values)
	assert.Equal(t, []any{int64(12), "cy"}, rows[2].Values)
	assert.Equal(t, []any{int64(13), "dee", nil}, rows[3].Values)
}

func TestTransformRowsEmpty(t *testing.T) {
	rows := TransformRows(nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
