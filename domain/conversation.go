package domain

import (
	"sort"
	"strings"
)

// ConversationKey builds the canonical identifier of a two-party thread:
// both usernames sorted lexicographically and joined with an underscore.
// Pure and symmetric: ConversationKey(a, b) == ConversationKey(b, a).
func ConversationKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}
