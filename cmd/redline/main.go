package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/benjaminschreck/go-redline/pkg/redline"
)

const (
	version = "0.1.0"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		reportError(os.Stdout, os.Stderr, err, jsonRequested(os.Args[1:]))
		os.Exit(1)
	}
}

// errorReport is how a failure is printed under --json.
type errorReport struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    redline.Code `json:"code,omitempty"`
	Message string       `json:"message"`
}

// reportError prints a failed command. Errors from the library carry a
// stable code; under --json the report goes to stdout with the results.
func reportError(stdout, stderr io.Writer, err error, asJSON bool) {
	code := redline.ErrorCode(err)
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if enc.Encode(errorReport{Error: errorDetail{Code: code, Message: err.Error()}}) == nil {
			return
		}
	}
	if code != "" && !strings.HasPrefix(err.Error(), string(code)) {
		fmt.Fprintf(stderr, "Error: [%s] %s\n", code, err)
		return
	}
	fmt.Fprintf(stderr, "Error: %s\n", err)
}

// jsonRequested looks for the global --json flag in raw arguments, since
// the parsed flags are gone once the app has failed.
func jsonRequested(args []string) bool {
	valued := map[string]bool{"config": true, "c": true, "log-level": true, "author": true, "a": true}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || !strings.HasPrefix(arg, "-") {
			return false
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		switch {
		case name == "json":
			if !hasValue {
				return true
			}
			on, err := strconv.ParseBool(value)
			return err == nil && on
		case valued[name] && !hasValue:
			i++
		}
	}
	return false
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "redline",
		Usage:   "Comment on and edit DOCX files with tracked changes",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"REDLINE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error, disabled)",
			},
			&cli.StringFlag{
				Name:    "author",
				Aliases: []string{"a"},
				Usage:   "Author recorded on new comments and revisions",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Commands: []*cli.Command{
			readCommand(),
			addCommentCommand(),
			listCommentsCommand(),
			deleteCommentCommand(),
			insertTextCommand(),
			deleteTextCommand(),
			replaceTextCommand(),
			modifyParagraphCommand(),
			listRevisionsCommand(),
			suggestRevisionCommand(),
			configCommand(),
		},
	}
}
