package test

import (
	"github.com/kelseyhightower/envconfig"
)

// Config tunes the integration scenarios from the environment.
type Config struct {
	// SCENARIO_COLOURS enables colorized banners for better log readability
	Colours bool `envconfig:"SCENARIO_COLOURS" default:"true"`
	// SCENARIO_SEARCH_LIMIT caps full-text results in the search scenario
	SearchLimit int `envconfig:"SCENARIO_SEARCH_LIMIT" default:"20"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
