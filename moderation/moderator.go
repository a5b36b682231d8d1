// Package moderation masks configured words in outgoing messages before
// they reach the store. Matching is resilient to leet-speak and to noise
// characters interleaved inside a word.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
	enabled     bool
}

// NewModerator builds the Aho-Corasick automaton from the normalized word
// list. Words that normalize to nothing (pure punctuation or spacing) are
// dropped; an empty surviving list yields a disabled moderator that passes
// text through.
func NewModerator(words []string, replacement rune) (Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		normalized := normalize([]rune(word), nil).text
		if len(normalized) == 0 {
			continue
		}
		patterns = append(patterns, normalized)
	}
	if len(patterns) == 0 {
		return Moderator{}, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: machine, replacement: replacement, enabled: true}, nil
}

// mapping ties each rune of the normalized text back to its position in the
// original, so masking can hit the characters the user actually typed.
type mapping struct {
	text    []rune
	origIdx []int
}

// Censor replaces every configured word found in text with the replacement
// rune and returns the matched patterns. Spacing and unmatched characters
// are preserved.
func (m *Moderator) Censor(text string) (string, []string) {
	if !m.enabled {
		return text, nil
	}

	origRunes := []rune(text)
	mapped := normalize(origRunes, make([]int, 0, len(origRunes)))
	if len(mapped.text) == 0 {
		return text, nil
	}

	spans := m.matcher.MultiPatternSearch(mapped.text, false)
	if len(spans) == 0 {
		return text, nil
	}

	var matched []string
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(mapped.origIdx) {
			continue
		}
		matched = append(matched, string(span.Word))
		for i := mapped.origIdx[start]; i <= mapped.origIdx[end-1]; i++ {
			origRunes[i] = m.replacement
		}
	}
	return string(origRunes), matched
}

// normalize lower-cases, undoes common leet substitutions, and drops
// punctuation, spacing and symbols. When idx is non-nil the original rune
// positions are tracked alongside.
func normalize(input []rune, idx []int) mapping {
	out := make([]rune, 0, len(input))
	for i, r := range input {
		clean := unleet(r)
		if unicode.IsPunct(clean) || unicode.IsSpace(clean) || unicode.IsSymbol(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
		if idx != nil {
			idx = append(idx, i)
		}
	}
	return mapping{text: out, origIdx: idx}
}

// unleet maps common leet-speak characters back to their alphabet
// counterparts so "h4ck" matches "hack".
func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	default:
		return r
	}
}
