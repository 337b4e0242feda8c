package app

import (
	"github.com/raysh454/imola/internal/corpus"
	"github.com/raysh454/imola/internal/frequency"
)

// Config contains the runtime options shared by the CLI and the server.
type Config struct {
	// Addr is the HTTP listen address for `imola serve`.
	Addr string `mapstructure:"addr" yaml:"addr"`

	// DictionaryPath points at a YAML role dictionary. Empty selects the
	// built-in dictionary.
	DictionaryPath string `mapstructure:"dictionary" yaml:"dictionary"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// PageSize is the default number of documents per listing page.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// Corpus configuration
	Corpus corpus.Config `mapstructure:"corpus" yaml:"corpus"`

	// Word frequency configuration
	Frequency frequency.Config `mapstructure:"frequency" yaml:"frequency"`
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:     "127.0.0.1:8080",
		LogLevel: "info",
		PageSize: 25,
		Corpus: corpus.Config{
			Sources: []corpus.Source{
				{Label: "teksty", Dir: "data/teksty"},
			},
			MaxFileSize: corpus.DefaultMaxFileSize,
		},
		Frequency: frequency.DefaultConfig(),
	}
}
