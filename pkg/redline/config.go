package redline

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/benjaminschreck/go-redline/pkg/redline/diff"
)

// EnvPrefix is the prefix of environment variables read by LoadConfig.
const EnvPrefix = "REDLINE_"

// Default author identity for comments and revisions.
const (
	DefaultAuthor   = "AI Assistant"
	DefaultInitials = "AI"
)

// Config contains all configuration options for the editor
type Config struct {
	// Author is recorded on comments and revisions when a call names none
	Author string `koanf:"author" toml:"author" json:"author"`
	// Initials is recorded on comments when a call names none
	Initials string `koanf:"initials" toml:"initials" json:"initials"`
	// DiffStrategy is used by whole-paragraph replacement (char, word, position)
	DiffStrategy string `koanf:"diff_strategy" toml:"diff_strategy" json:"diff_strategy"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, disabled)
	LogLevel string `koanf:"log_level" toml:"log_level" json:"log_level"`
	// VerifySave re-reads every saved file and checks untouched parts
	VerifySave bool `koanf:"verify_save" toml:"verify_save" json:"verify_save"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Author:       DefaultAuthor,
		Initials:     DefaultInitials,
		DiffStrategy: string(diff.DefaultStrategy),
		LogLevel:     "info",
		VerifySave:   true,
	}
}

// defaultsMap mirrors DefaultConfig for the confmap provider.
func defaultsMap() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"author":        d.Author,
		"initials":      d.Initials,
		"diff_strategy": d.DiffStrategy,
		"log_level":     d.LogLevel,
		"verify_save":   d.VerifySave,
	}
}

// LoadConfig builds a configuration from defaults, an optional TOML file and
// REDLINE_* environment variables, in increasing order of precedence.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Author) == "" {
		return errors.New("author cannot be empty")
	}

	if _, err := diff.ParseStrategy(c.DiffStrategy); err != nil {
		return err
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	return nil
}

// Strategy returns the configured diff strategy.
func (c *Config) Strategy() diff.Strategy {
	s, err := diff.ParseStrategy(c.DiffStrategy)
	if err != nil {
		return diff.DefaultStrategy
	}
	return s
}

// SampleConfig is the file written by InitConfig.
const SampleConfig = `# redline configuration
#
# Every key can be overridden with an environment variable, e.g.
# REDLINE_AUTHOR="Jane Reviewer".

# Identity recorded on comments and tracked changes.
author = "AI Assistant"
initials = "AI"

# Diff used for whole-paragraph replacement: "word", "char" or "position".
diff_strategy = "word"

# debug, info, warn, error or disabled
log_level = "info"

# Re-read saved files and compare untouched parts.
verify_save = true
`

// InitConfig writes a sample configuration file
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists at %s", path)
	}
	return os.WriteFile(path, []byte(SampleConfig), 0644)
}
