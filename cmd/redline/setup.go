package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/benjaminschreck/go-redline/pkg/redline"
)

// session carries what every document command needs.
type session struct {
	config *redline.Config
	editor *redline.Editor
	json   bool
	out    io.Writer
}

// newSession loads the configuration, applies global flag overrides and
// sets up logging.
func newSession(c *cli.Context) (*session, error) {
	cfg, err := redline.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if author := c.String("author"); author != "" {
		cfg.Author = author
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	redline.SetLogger(logger)

	editor := redline.NewWithConfig(cfg)
	editor.SetLogger(logger)

	return &session{
		config: cfg,
		editor: editor,
		json:   c.Bool("json"),
		out:    c.App.Writer,
	}, nil
}

// newLogger writes human-readable logs to terminals and JSON otherwise.
func newLogger(w *os.File, level string) zerolog.Logger {
	if isTerminal(w) {
		console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		return redline.NewLogger(console, level)
	}
	return redline.NewLogger(w, level)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// documentPath returns the command's FILE argument as an absolute path.
func documentPath(c *cli.Context) (string, error) {
	path := c.Args().Get(0)
	if path == "" {
		return "", redline.NewValidationError(redline.CodeInvalidPath, "file", "missing required argument: FILE")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

// printJSON writes v as indented JSON.
func (s *session) printJSON(v interface{}) error {
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
