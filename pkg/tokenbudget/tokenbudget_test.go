package tokenbudget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountGrowsWithLength(t *testing.T) {
	short := Count("hello")
	long := Count(strings.Repeat("hello world, this is a much longer passage. ", 50))
	assert.Greater(t, long, short)
}

func TestFitsRejectsOverBudget(t *testing.T) {
	assert.True(t, Fits(20)("a short phrase"))
	assert.False(t, Fits(3)(strings.Repeat("word ", 200)))
}
