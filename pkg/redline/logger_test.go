package redline

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected []string
		hidden   []string
	}{
		{
			name:     "debug level shows all messages",
			level:    "debug",
			expected: []string{"debug message", "info message", "warn message"},
		},
		{
			name:     "info level hides debug messages",
			level:    "info",
			expected: []string{"info message", "warn message"},
			hidden:   []string{"debug message"},
		},
		{
			name:     "unknown level falls back to info",
			level:    "chatty",
			expected: []string{"info message"},
			hidden:   []string{"debug message"},
		},
		{
			name:   "disabled hides everything",
			level:  "disabled",
			hidden: []string{"debug message", "info message", "warn message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)
			logger.Debug().Msg("debug message")
			logger.Info().Msg("info message")
			logger.Warn().Msg("warn message")

			out := buf.String()
			for _, s := range tt.expected {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.hidden {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")
	logger.Info().Str("path", "/a.docx").Int("paragraph", 2).Msg("text inserted")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "/a.docx", entry["path"])
	assert.Equal(t, float64(2), entry["paragraph"])
	assert.Equal(t, "text inserted", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, "warn"))
	l := GetLogger()
	l.Info().Msg("quiet")
	assert.Empty(t, buf.String())

	SetLogLevel("debug")
	l = GetLogger()
	l.Debug().Msg("loud")
	assert.True(t, strings.Contains(buf.String(), "loud"))
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())
}

func TestPackageLogsOperations(t *testing.T) {
	var buf bytes.Buffer
	pkg := openTestPackage(t, para("Hello world"))
	pkg.SetLogger(NewLogger(&buf, "debug"))

	_, err := pkg.AddComment(CommentOptions{Text: "c", Anchor: TextAnchor("world")})
	require.NoError(t, err)
	_, err = pkg.ModifyParagraph(0, "Goodbye world", "", testMeta)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"comment added"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"comments":[0]`)
}
