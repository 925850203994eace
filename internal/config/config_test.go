package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/datatable/internal/cache"
	"github.com/rshade/datatable/internal/config"
	"github.com/rshade/datatable/internal/query"
)

// writeFile is a test helper that writes content to name inside a temp dir
// and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_Defaults(t *testing.T) {
	cfg := config.New()

	assert.Equal(t, config.CurrentVersion, cfg.Version)
	assert.Equal(t, config.DefaultBaseURL, cfg.Source.BaseURL)
	assert.Equal(t, 10, cfg.Table.PageSize)
	assert.Equal(t, []int{5, 10, 25}, cfg.Table.PageSizes)
	assert.Equal(t, 3, cfg.Table.MinFilter)
	assert.Equal(t, 400*time.Millisecond, cfg.Table.Debounce)
	assert.False(t, cfg.Cache.Enabled)
	require.NoError(t, cfg.Validate())

	cfg.Table.PageSizes[0] = 99
	assert.Equal(t, 5, query.DefaultPageSizes[0])
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.New(), cfg)
	})

	t.Run("partial file keeps other defaults", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "config.yaml", `
version: 1.2.0
source:
  base_url: https://api.example.com/users/
  timeout: 3s
table:
  page_size: 25
  debounce: 250ms
  sort: name:desc
  columns:
    - field: name
      title: Name
      width: 30
    - field: email
      sortable: false
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, "https://api.example.com/users/", cfg.Source.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.Source.Timeout)
		assert.Equal(t, 25, cfg.Table.PageSize)
		assert.Equal(t, 250*time.Millisecond, cfg.Table.Debounce)
		assert.Equal(t, 3, cfg.Table.MinFilter)
		require.Len(t, cfg.Table.Columns, 2)
		assert.True(t, cfg.Table.Columns[0].IsSortable())
		assert.False(t, cfg.Table.Columns[1].IsSortable())
		assert.Equal(t, "info", cfg.Logging.Level)
		require.NoError(t, cfg.Validate())
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "config.yaml", "version: 2.0.0\n")
		_, err := config.Load(path)
		require.ErrorIs(t, err, config.ErrUnsupportedVersion)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "config.yaml", "table: [unclosed\n")
		_, err := config.Load(path)
		require.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.New()
	cfg.Source.Headers = map[string]string{"Authorization": "Token abc"}
	cfg.Table.Columns = []config.ColumnConfig{{Field: "name", Width: 20}}

	require.NoError(t, cfg.Save(path))
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr error
	}{
		{name: "empty base url", mutate: func(c *config.Config) { c.Source.BaseURL = " " }, wantErr: config.ErrEmptyBaseURL},
		{name: "negative timeout", mutate: func(c *config.Config) { c.Source.Timeout = -time.Second }, wantErr: config.ErrInvalidTimeout},
		{name: "zero page size", mutate: func(c *config.Config) { c.Table.PageSize = 0 }, wantErr: config.ErrInvalidPageSize},
		{name: "bad page sizes", mutate: func(c *config.Config) { c.Table.PageSizes = []int{5, -1} }, wantErr: config.ErrInvalidPageSizes},
		{name: "zero min filter", mutate: func(c *config.Config) { c.Table.MinFilter = 0 }, wantErr: config.ErrInvalidMinFilter},
		{name: "negative debounce", mutate: func(c *config.Config) { c.Table.Debounce = -1 }, wantErr: config.ErrInvalidDebounce},
		{name: "bad sort", mutate: func(c *config.Config) { c.Table.Sort = "name:sideways" }, wantErr: query.ErrInvalidSortOrder},
		{name: "column without field", mutate: func(c *config.Config) { c.Table.Columns = []config.ColumnConfig{{Title: "x"}} }, wantErr: config.ErrInvalidColumn},
		{name: "bad log format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, wantErr: config.ErrInvalidLogFormat},
		{name: "bad version", mutate: func(c *config.Config) { c.Version = "one" }, wantErr: config.ErrInvalidVersion},
		{
			name: "cache ttl checked only when enabled",
			mutate: func(c *config.Config) {
				c.Cache.Enabled = true
				c.Cache.TTLSeconds = 0
			},
			wantErr: cache.ErrInvalidTTL,
		},
		{name: "valid", mutate: func(*config.Config) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "http://env.example.com/items/")
	t.Setenv(config.EnvPageSize, "25")
	t.Setenv(config.EnvMinFilter, "not-a-number")
	t.Setenv(config.EnvLogLevel, "debug")
	t.Setenv("DATATABLE_CACHE_ENABLED", "true")
	t.Setenv("DATATABLE_CACHE_TTL_SECONDS", "120")

	cfg := config.New()
	cfg.ApplyEnv()

	assert.Equal(t, "http://env.example.com/items/", cfg.Source.BaseURL)
	assert.Equal(t, 25, cfg.Table.PageSize)
	assert.Equal(t, 3, cfg.Table.MinFilter)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 120, cfg.Cache.TTLSeconds)
}

func TestResolvePathAndHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvConfig, "")

	assert.Equal(t, filepath.Join(home, "config.yaml"), config.ResolvePath(""))
	assert.Equal(t, "/tmp/x.yaml", config.ResolvePath("/tmp/x.yaml"))
	assert.Equal(t, filepath.Join(home, "cache"), config.New().CacheDir())

	t.Setenv(config.EnvConfig, "/etc/datatable.yaml")
	assert.Equal(t, "/etc/datatable.yaml", config.ResolvePath(""))
}

func TestLoggerConfig(t *testing.T) {
	t.Setenv(config.EnvHome, "/home/u/.datatable")
	cfg := config.New()
	cfg.Logging.Output = "file"

	lc := cfg.LoggerConfig(false)
	assert.Equal(t, "info", lc.Level)
	assert.Equal(t, filepath.Join("/home/u/.datatable", "logs", config.DefaultLogFile), lc.File)
	assert.False(t, lc.Caller)

	lc = cfg.LoggerConfig(true)
	assert.Equal(t, "debug", lc.Level)
	assert.True(t, lc.Caller)
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr error
	}{
		{version: ""},
		{version: "1.0.0"},
		{version: "1.9.3"},
		{version: "0.9.0", wantErr: config.ErrUnsupportedVersion},
		{version: "2.0.0", wantErr: config.ErrUnsupportedVersion},
		{version: "v1", wantErr: nil},
		{version: "banana", wantErr: config.ErrInvalidVersion},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := config.CheckVersion(tt.version)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProjectOverlay(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvProjectDir, "")
	ctx := context.Background()

	root := t.TempDir()
	global := writeFile(t, root, "global.yaml", `
source:
  base_url: https://global.example.com/items/
logging:
  level: warn
`)
	project := filepath.Join(root, "repo")
	writeFile(t, project, ".datatable/config.yaml", `
table:
  page_size: 5
  page_sizes: [5, 50]
  min_filter: 2
unknown_section: true
`)
	nested := filepath.Join(project, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	projectDir := config.ResolveProjectDir(ctx, "", nested)
	assert.Equal(t, filepath.Join(project, ".datatable"), projectDir)
	assert.Equal(t, projectDir, config.ResolveProjectDir(ctx, project, "/"))
	assert.Equal(t, projectDir, config.ResolveProjectDir(ctx, projectDir, "/"))

	cfg, err := config.NewWithProjectDir(ctx, global, projectDir)
	require.NoError(t, err)
	assert.Equal(t, "https://global.example.com/items/", cfg.Source.BaseURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Table.PageSize)
	assert.Equal(t, []int{5, 50}, cfg.Table.PageSizes)
	// The table section is replaced wholesale.
	assert.Zero(t, cfg.Table.Debounce)

	plain, err := config.NewWithProjectDir(ctx, global, "")
	require.NoError(t, err)
	assert.Equal(t, 10, plain.Table.PageSize)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	require.ErrorIs(t, config.ShallowMergeYAML(nil, "x"), config.ErrNilConfigTarget)

	cfg := config.New()
	require.Error(t, config.ShallowMergeYAML(cfg, filepath.Join(t.TempDir(), "missing.yaml")))

	bad := writeFile(t, t.TempDir(), "bad.yaml", "table:\n  page_size: many\n")
	require.Error(t, config.ShallowMergeYAML(cfg, bad))

	empty := writeFile(t, t.TempDir(), "empty.yaml", "# nothing\n")
	require.NoError(t, config.ShallowMergeYAML(cfg, empty))
	assert.Equal(t, config.New(), cfg)
}
