package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := ComponentLogger(New(&buf, FormatJSON, zerolog.DebugLevel, false), "coordinator")

	l.Info().Msg("hello")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "coordinator", event[FieldComponent])
	assert.Equal(t, "hello", event["message"])
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "datatable.log")

	result := NewLogger(Config{Level: "info", Format: FormatJSON, Output: OutputFile, File: path})
	t.Cleanup(func() { _ = result.Close() })

	assert.True(t, result.UsingFile)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, path, result.FilePath)
	assert.FileExists(t, path)
}

func TestNewLogger_FallbackOnUnknownOutput(t *testing.T) {
	result := NewLogger(Config{Output: "syslog"})
	assert.True(t, result.FallbackUsed)
	assert.Contains(t, result.FallbackReason, "syslog")
	assert.NoError(t, result.Close())
}

func TestTraceIDs(t *testing.T) {
	ctx := context.Background()

	_, ok := TraceIDFromContext(ctx)
	assert.False(t, ok)

	generated := GetOrGenerateTraceID(ctx)
	assert.Len(t, generated, 26)

	ctx = ContextWithTraceID(ctx, "01HXTRACE")
	assert.Equal(t, "01HXTRACE", GetOrGenerateTraceID(ctx))
}

func TestTraced(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, FormatJSON, zerolog.InfoLevel, false)

	ctx, l := Traced(ContextWithTraceID(context.Background(), "trace-1"), base)
	l.Info().Msg("x")
	FromContext(ctx).Info().Msg("y")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, line := range lines {
		var event map[string]any
		require.NoError(t, json.Unmarshal(line, &event))
		assert.Equal(t, "trace-1", event[FieldTraceID])
	}
}
