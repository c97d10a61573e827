package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationHelpers(t *testing.T) {
	assert.Equal(t, 0, CalculateTotalPages(0, 10))
	assert.Equal(t, 1, CalculateTotalPages(10, 10))
	assert.Equal(t, 3, CalculateTotalPages(21, 10))
	assert.Equal(t, 0, CalculateTotalPages(5, 0))

	assert.Equal(t, 0, CalculateOffset(0, 10))
	assert.Equal(t, 0, CalculateOffset(1, 10))
	assert.Equal(t, 40, CalculateOffset(3, 20))

	assert.Equal(t, DefaultPerPage, ClampPerPage(0, MaxPerPage))
	assert.Equal(t, 25, ClampPerPage(25, MaxPerPage))
	assert.Equal(t, MaxPerPage, ClampPerPage(500, MaxPerPage))
}
