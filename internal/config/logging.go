package config

import (
	"path/filepath"

	"github.com/rshade/datatable/internal/logging"
)

// DefaultLogFile is the log file name used when logging.output is "file"
// and no path is configured.
const DefaultLogFile = "datatable.log"

// LoggerConfig converts the logging section for logging.NewLogger. debug
// forces the debug level and caller information, as the --debug flag does.
func (c *Config) LoggerConfig(debug bool) logging.Config {
	cfg := logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
		File:   c.Logging.File,
	}
	if cfg.Output == logging.OutputFile && cfg.File == "" {
		cfg.File = filepath.Join(HomeDir(), "logs", DefaultLogFile)
	}
	if debug {
		cfg.Level = "debug"
		cfg.Caller = true
	}
	return cfg
}
