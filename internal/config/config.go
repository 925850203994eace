package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/datatable/internal/cache"
	"github.com/rshade/datatable/internal/logging"
	"github.com/rshade/datatable/internal/query"
	"github.com/rshade/datatable/internal/trigger"
)

// Environment variables read by ApplyEnv and ResolvePath.
const (
	EnvConfig    = "DATATABLE_CONFIG"
	EnvHome      = "DATATABLE_HOME"
	EnvBaseURL   = "DATATABLE_BASE_URL"
	EnvPageSize  = "DATATABLE_PAGE_SIZE"
	EnvMinFilter = "DATATABLE_MIN_FILTER"
	EnvLogLevel  = "DATATABLE_LOG_LEVEL"
)

const (
	// DirName is the per-user and per-project configuration directory name.
	DirName = ".datatable"

	// FileName is the configuration file name inside DirName.
	FileName = "config.yaml"

	// DefaultBaseURL points at the bundled demo backend.
	DefaultBaseURL = "http://127.0.0.1:8080/api/items/"

	// DefaultTimeout bounds a single backend request.
	DefaultTimeout = 10 * time.Second

	configFileMode = 0o600
	configDirMode  = 0o750
)

// Validation errors.
var (
	ErrEmptyBaseURL     = errors.New("source.base_url cannot be empty")
	ErrInvalidPageSize  = errors.New("table.page_size must be positive")
	ErrInvalidPageSizes = errors.New("table.page_sizes must be positive")
	ErrInvalidMinFilter = errors.New("table.min_filter must be positive")
	ErrInvalidDebounce  = errors.New("table.debounce cannot be negative")
	ErrInvalidTimeout   = errors.New("source.timeout cannot be negative")
	ErrInvalidColumn    = errors.New("table.columns entries need a field")
	ErrInvalidLogFormat = errors.New("logging.format must be 'json' or 'console'")
	ErrUnknownConfigKey = errors.New("unknown config key")
	ErrNilConfigTarget  = errors.New("nil target *Config")
)

// Config is the datatable configuration file.
type Config struct {
	Version string        `yaml:"version"`
	Source  SourceConfig  `yaml:"source"`
	Table   TableConfig   `yaml:"table"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig describes the list backend.
type SourceConfig struct {
	// BaseURL is the collection URL; items live at BaseURL/{id}/.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each request. Zero disables the timeout.
	Timeout time.Duration `yaml:"timeout"`

	// Headers are sent with every request, e.g. Authorization.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// TableConfig holds view defaults.
type TableConfig struct {
	PageSize  int            `yaml:"page_size"`
	PageSizes []int          `yaml:"page_sizes"`
	MinFilter int            `yaml:"min_filter"`
	Debounce  time.Duration  `yaml:"debounce"`
	Sort      string         `yaml:"sort,omitempty"`
	Columns   []ColumnConfig `yaml:"columns,omitempty"`
}

// ColumnConfig describes one rendered column of a row object.
type ColumnConfig struct {
	Title    string `yaml:"title,omitempty"`
	Field    string `yaml:"field"`
	Width    int    `yaml:"width,omitempty"`
	Sortable *bool  `yaml:"sortable,omitempty"`
}

// IsSortable reports whether the column can drive ordering. Columns are
// sortable unless disabled.
func (c ColumnConfig) IsSortable() bool {
	return c.Sortable == nil || *c.Sortable
}

// CacheConfig controls the page cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir,omitempty"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output,omitempty"`
	File   string `yaml:"file,omitempty"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Version: CurrentVersion,
		Source: SourceConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Table: TableConfig{
			PageSize:  query.DefaultPageSize,
			PageSizes: slices.Clone(query.DefaultPageSizes),
			MinFilter: trigger.DefaultMinFilter,
			Debounce:  trigger.DefaultQuiet,
		},
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: cache.DefaultTTLSeconds,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
			Output: logging.OutputStderr,
		},
	}
}

// Load reads path on top of the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := New()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := CheckVersion(cfg.Version); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, configFileMode); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := CheckVersion(c.Version); err != nil {
		return err
	}
	if strings.TrimSpace(c.Source.BaseURL) == "" {
		return ErrEmptyBaseURL
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTimeout, c.Source.Timeout)
	}
	if err := c.Table.Validate(); err != nil {
		return err
	}
	if c.Cache.Enabled {
		if err := cache.ValidateTTL(c.Cache.TTLSeconds); err != nil {
			return fmt.Errorf("cache.ttl_seconds: %w", err)
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	return nil
}

// Validate checks the table section.
func (t TableConfig) Validate() error {
	if t.PageSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, t.PageSize)
	}
	for _, s := range t.PageSizes {
		if s <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidPageSizes, s)
		}
	}
	if t.MinFilter <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMinFilter, t.MinFilter)
	}
	if t.Debounce < 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidDebounce, t.Debounce)
	}
	if t.Sort != "" {
		if _, _, err := query.ParseSort(t.Sort); err != nil {
			return fmt.Errorf("table.sort: %w", err)
		}
	}
	for i, col := range t.Columns {
		if strings.TrimSpace(col.Field) == "" {
			return fmt.Errorf("%w: entry %d", ErrInvalidColumn, i)
		}
	}
	return nil
}

// ApplyEnv overrides fields from DATATABLE_* environment variables.
// Malformed numeric values are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Source.BaseURL = v
	}
	if n, ok := envInt(EnvPageSize); ok {
		c.Table.PageSize = n
	}
	if n, ok := envInt(EnvMinFilter); ok {
		c.Table.MinFilter = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	c.Cache.Enabled = cache.EnabledFromEnv(c.Cache.Enabled)
	c.Cache.TTLSeconds = cache.TTLFromEnv(c.Cache.TTLSeconds)
	c.Cache.Dir = cache.DirFromEnv(c.Cache.Dir)
}

// CacheDir returns the configured cache directory or the default under home.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(HomeDir(), "cache")
}

// HomeDir returns the datatable home directory: $DATATABLE_HOME, or
// ~/.datatable, or ./.datatable when the user home is unknown.
func HomeDir() string {
	if v := os.Getenv(EnvHome); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// ResolvePath picks the config file: the flag value, then $DATATABLE_CONFIG,
// then HomeDir()/config.yaml.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(EnvConfig); v != "" {
		return v
	}
	return filepath.Join(HomeDir(), FileName)
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
