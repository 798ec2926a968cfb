package redline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benjaminschreck/go-redline/pkg/redline/diff"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Author != "AI Assistant" {
		t.Errorf("DefaultConfig Author = %q, want AI Assistant", config.Author)
	}

	if config.Initials != "AI" {
		t.Errorf("DefaultConfig Initials = %q, want AI", config.Initials)
	}

	if config.Strategy() != diff.Word {
		t.Errorf("DefaultConfig Strategy = %s, want word", config.Strategy())
	}

	if config.LogLevel != "info" {
		t.Errorf("DefaultConfig LogLevel = %s, want info", config.LogLevel)
	}

	if !config.VerifySave {
		t.Errorf("DefaultConfig VerifySave = false, want true")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig is invalid: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redline.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		envVars map[string]string
		check   func(t *testing.T, config *Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, config *Config) {
				if *config != *DefaultConfig() {
					t.Errorf("LoadConfig() = %+v, want defaults", *config)
				}
			},
		},
		{
			name: "file overrides defaults",
			file: "author = \"Jane Reviewer\"\ndiff_strategy = \"char\"\n",
			check: func(t *testing.T, config *Config) {
				if config.Author != "Jane Reviewer" {
					t.Errorf("Author = %q, want Jane Reviewer", config.Author)
				}
				if config.Strategy() != diff.Char {
					t.Errorf("Strategy = %s, want char", config.Strategy())
				}
				if config.Initials != "AI" {
					t.Errorf("Initials = %q, want the default", config.Initials)
				}
			},
		},
		{
			name:    "environment overrides file",
			file:    "author = \"Jane Reviewer\"\nlog_level = \"debug\"\n",
			envVars: map[string]string{"REDLINE_AUTHOR": "Env Reviewer"},
			check: func(t *testing.T, config *Config) {
				if config.Author != "Env Reviewer" {
					t.Errorf("Author = %q, want Env Reviewer", config.Author)
				}
				if config.LogLevel != "debug" {
					t.Errorf("LogLevel = %q, want debug", config.LogLevel)
				}
			},
		},
		{
			name:    "boolean from environment",
			envVars: map[string]string{"REDLINE_VERIFY_SAVE": "false"},
			check: func(t *testing.T, config *Config) {
				if config.VerifySave {
					t.Error("VerifySave = true, want false")
				}
			},
		},
		{
			name:    "strategy from environment",
			envVars: map[string]string{"REDLINE_DIFF_STRATEGY": "position"},
			check: func(t *testing.T, config *Config) {
				if config.Strategy() != diff.Position {
					t.Errorf("Strategy = %s, want position", config.Strategy())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			tt.check(t, config)
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"unknown strategy", "diff_strategy = \"sentence\"\n"},
		{"unknown log level", "log_level = \"loud\"\n"},
		{"empty author", "author = \"  \"\n"},
		{"malformed toml", "author = \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.file)); err == nil {
				t.Error("LoadConfig() expected an error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadConfig() of a missing file expected an error")
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redline.toml")

	if err := InitConfig(path); err != nil {
		t.Fatalf("InitConfig() error = %v", err)
	}
	if err := InitConfig(path); err == nil {
		t.Error("InitConfig() over an existing file expected an error")
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() of the sample error = %v", err)
	}
	if *config != *DefaultConfig() {
		t.Errorf("sample config = %+v, want defaults", *config)
	}
}
