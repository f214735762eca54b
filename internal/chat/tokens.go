package chat

import (
	"strings"
	"unicode/utf8"
)

// CountWords returns the number of whitespace-separated words in s.
// This is the unit the size cap and quota limits are expressed in.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// EstimateTokens approximates the completion-model token count of s.
// One token per four runes is the usual heuristic for GPT-family models;
// exact tokenization is not needed for usage analytics.
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}
	tokens := (n + 3) / 4
	return tokens
}
