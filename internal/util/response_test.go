package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 50, 120)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 120, p.Total)
	assert.Equal(t, 3, p.TotalPage)

	// Exact multiple: no trailing partial page.
	assert.Equal(t, 2, NewPagination(1, 50, 100).TotalPage)

	// Empty collection still reports a sane shape.
	empty := NewPagination(1, 50, 0)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0, empty.TotalPage)

	// Out-of-range inputs snap to defaults.
	snapped := NewPagination(0, -5, -1)
	assert.Equal(t, 1, snapped.Page)
	assert.Equal(t, 10, snapped.Limit)
	assert.Equal(t, 0, snapped.Total)
}
