package projection

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"messenger-lab/domain"
)

func message(sender, text string) domain.Message {
	return domain.Message{ID: uuid.New(), Sender: sender, Text: text, At: time.Now().UTC()}
}

func Test_Digest_Counts_Per_Sender(t *testing.T) {
	req := require.New(t)
	digest := DigestOf([]domain.Message{
		message("Alice", "hello there, how are you doing today"),
		message("Alice", "still waiting for your answer my friend"),
		message("Bob", "sorry, I was away from the keyboard"),
	})

	req.Equal(3, digest.Total)
	req.Equal(2, digest.BySender["Alice"])
	req.Equal(1, digest.BySender["Bob"])
}

func Test_Digest_Detects_Dominant_Language(t *testing.T) {
	req := require.New(t)
	digest := DigestOf([]domain.Message{
		message("Alice", "the quick brown fox jumps over the lazy dog"),
		message("Bob", "english is clearly the dominant language in this conversation"),
		message("Alice", "one more english sentence to settle the question for good"),
	})

	req.Equal("en", digest.DominantLanguage())
}

func Test_Empty_Digest_Is_Unknown(t *testing.T) {
	req := require.New(t)
	digest := NewDigest()
	req.Equal(0, digest.Total)
	req.Equal("unknown", digest.DominantLanguage())
}
