package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   \n\t"))
	assert.Equal(t, 1, CountWords("hello"))
	assert.Equal(t, 2, CountWords("  hello   world  "))
	assert.Equal(t, 1000, CountWords(strings.Repeat("word ", 1000)))
	assert.Equal(t, 1001, CountWords(strings.Repeat("word ", 1001)))
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("hi"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	// Counted in runes, not bytes
	assert.Equal(t, 1, EstimateTokens("äöü"))
}
