package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ConversationKey_Is_Symmetric(t *testing.T) {
	req := require.New(t)
	pairs := [][2]string{
		{"Alice", "Bob"},
		{"User_1", "alice"},
		{"Zoe", "Zoe"},
		{"a_b", "a"},
	}
	for _, p := range pairs {
		req.Equal(ConversationKey(p[0], p[1]), ConversationKey(p[1], p[0]))
	}
}

func Test_ConversationKey_Sorts_Lexicographically(t *testing.T) {
	req := require.New(t)
	req.Equal("Alice_Bob", ConversationKey("Bob", "Alice"))
	req.Equal("User_1_alice", ConversationKey("alice", "User_1"))
}
