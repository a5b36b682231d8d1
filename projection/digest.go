// Package projection builds read-only views from the stored message
// history. It never mutates stores and never talks to the UI directly.
package projection

import (
	"github.com/abadojack/whatlanggo"

	"messenger-lab/domain"
)

// Digest summarizes one conversation: message counts per sender and a
// tally of detected languages.
type Digest struct {
	Total     int
	BySender  map[string]int
	Languages map[string]int
}

func NewDigest() *Digest {
	return &Digest{
		BySender:  make(map[string]int),
		Languages: make(map[string]int),
	}
}

// Consume folds one message into the digest. Language detection is
// best-effort: texts too short to classify count as "unknown".
func (d *Digest) Consume(message domain.Message) {
	d.Total++
	d.BySender[message.Sender]++

	info := whatlanggo.Detect(message.Text)
	lang := info.Lang.Iso6391()
	if lang == "" || !info.IsReliable() {
		lang = "unknown"
	}
	d.Languages[lang]++
}

// DominantLanguage returns the most frequent detected language, or
// "unknown" for an empty digest. Ties break towards the lexicographically
// smaller code so the result is deterministic.
func (d *Digest) DominantLanguage() string {
	best, bestCount := "unknown", 0
	for lang, count := range d.Languages {
		if count > bestCount || (count == bestCount && lang < best) {
			best, bestCount = lang, count
		}
	}
	return best
}

// DigestOf folds a whole message sequence.
func DigestOf(messages []domain.Message) *Digest {
	digest := NewDigest()
	for _, message := range messages {
		digest.Consume(message)
	}
	return digest
}
