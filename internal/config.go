package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath        string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	SessionTokenDuration time.Duration `env:"SESSION_TOKEN_DURATION,default=24h"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	CensoredWords        string        `env:"CENSORED_WORDS"`
	SearchLimit          int           `env:"SEARCH_LIMIT,default=20"`
	DebugPort            int           `env:"DEBUG_PORT"`
}

func (c Config) CharacterRune() (rune, error) {
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			c.CharReplacement,
		)
	}
	return r[0], nil
}

// CensoredWordList splits the comma-separated CENSORED_WORDS entry. An
// empty entry means moderation is disabled.
func (c Config) CensoredWordList() []string {
	if strings.TrimSpace(c.CensoredWords) == "" {
		return nil
	}
	var words []string
	for _, word := range strings.Split(c.CensoredWords, ",") {
		if word = strings.TrimSpace(word); word != "" {
			words = append(words, word)
		}
	}
	return words
}
