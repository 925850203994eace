package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Supported output and format values.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"

	FormatJSON    = "json"
	FormatConsole = "console"
)

// Field names shared by all components.
const (
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldOperation = "operation"
)

// logFileMode is the permission used for newly created log files.
const logFileMode = 0o600

// logDirMode is the permission used for newly created log directories.
const logDirMode = 0o750

// ErrUnknownOutput is returned for an output value that is not stderr, stdout or file.
var ErrUnknownOutput = errors.New("unknown log output")

// Config describes how a logger is built.
type Config struct {
	// Level is a zerolog level name (trace, debug, info, warn, error).
	Level string

	// Format is "json" or "console".
	Format string

	// Output is "stderr", "stdout" or "file".
	Output string

	// File is the log file path when Output is "file".
	File string

	// Caller adds caller file:line to every event.
	Caller bool
}

// Result is a constructed logger plus the resources it holds.
type Result struct {
	Logger zerolog.Logger

	// UsingFile is true when the logger writes to Config.File.
	UsingFile bool

	// FilePath is the resolved log file path when UsingFile is true.
	FilePath string

	// FallbackUsed is true when the file could not be opened and stderr was used instead.
	FallbackUsed   bool
	FallbackReason string

	file *os.File
}

// Close releases the log file, if any.
func (r *Result) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// NewLogger builds a logger from cfg. A file output that cannot be opened
// falls back to stderr and is reported through Result.FallbackUsed.
func NewLogger(cfg Config) *Result {
	level := ParseLevel(cfg.Level)
	result := &Result{}

	var out io.Writer = os.Stderr
	switch strings.ToLower(cfg.Output) {
	case "", OutputStderr:
	case OutputStdout:
		out = os.Stdout
	case OutputFile:
		f, err := openLogFile(cfg.File)
		if err != nil {
			result.FallbackUsed = true
			result.FallbackReason = err.Error()
			break
		}
		out = f
		result.file = f
		result.UsingFile = true
		result.FilePath = cfg.File
	default:
		result.FallbackUsed = true
		result.FallbackReason = fmt.Sprintf("%v: %q", ErrUnknownOutput, cfg.Output)
	}

	result.Logger = New(out, cfg.Format, level, cfg.Caller)
	return result
}

// New builds a logger writing to out in the given format.
func New(out io.Writer, format string, level zerolog.Level, caller bool) zerolog.Logger {
	if strings.EqualFold(format, FormatConsole) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// ParseLevel parses a level name, defaulting to info on error or empty input.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// ComponentLogger returns a child logger tagged with the component name.
func ComponentLogger(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str(FieldComponent, component).Logger()
}

// PrintLogPathMessage tells the user where log output is going.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning reports that file logging could not be set up.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: file logging unavailable (%s), logging to stderr\n", reason)
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.New("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), logDirMode); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
