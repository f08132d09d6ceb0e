package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokenCount(t *testing.T) {
	assert.Equal(t, 10, EstimateTokenCount("short"), "floor applies to tiny inputs")
	assert.Equal(t, 25, EstimateTokenCount(strings.Repeat("a", 100)))
}

func TestTruncateToChars(t *testing.T) {
	assert.Equal(t, "hello", TruncateToChars("hello", 100))
	assert.Equal(t, "hel", TruncateToChars("hello", 3))
	assert.Equal(t, "hello", TruncateToChars("hello", 0), "non-positive max means no limit")
}

func TestTruncateToCharsKeepsRunesIntact(t *testing.T) {
	s := "పంట దిగుబడి" // multi-byte Telugu text
	for max := 1; max < len(s); max++ {
		cut := TruncateToChars(s, max)
		assert.True(t, utf8.ValidString(cut), "max=%d produced invalid UTF-8", max)
		assert.LessOrEqual(t, len(cut), max)
	}
}
