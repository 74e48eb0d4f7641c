package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRow struct {
	ID      int64   `db:"id"`
	Name    string  `db:"name"`
	Note    *string `db:"note"`
	Ignored string  `db:"-"`
	Plain   string
	hidden  string  `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	cols := StructTagValues(taggedRow{})
	assert.Equal(t, []string{"id", "name", "note"}, cols)

	cols = StructTagValues(&taggedRow{})
	assert.Equal(t, []string{"id", "name", "note"}, cols)
}

func TestStructToMapOmitsColumns(t *testing.T) {
	row := &taggedRow{ID: 7, Name: "Block A", hidden: "x"}

	m := StructToMap(row, "id")
	require.Len(t, m, 2)
	assert.Equal(t, "Block A", m["name"])
	assert.Nil(t, m["note"])
	_, hasID := m["id"]
	assert.False(t, hasID)
}

func TestStructToMapPanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { StructToMap(42) })
}

func TestErrorWrapOrNil(t *testing.T) {
	assert.NoError(t, ErrorWrapOrNil(nil, "ignored"))

	base := errors.New("boom")
	err := ErrorWrapOrNil(base, "failed to create finding")
	assert.EqualError(t, err, "failed to create finding: boom")
	assert.ErrorIs(t, err, base)

	assert.Same(t, base, ErrorWrapOrNil(base, ""))
}

func TestNilIfBlank(t *testing.T) {
	assert.Nil(t, NilIfBlank("   "))
	assert.Equal(t, "Office", PtrString(NilIfBlank("  Office ")))
}

func TestNanoIDAlphabet(t *testing.T) {
	id := NanoID()
	assert.Len(t, id, NanoidSize)
	assert.Regexp(t, `^[0-9a-f]+$`, id)
}
