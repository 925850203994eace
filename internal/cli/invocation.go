package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/datatable/internal/config"
	"github.com/rshade/datatable/internal/logging"
)

// ErrNoInvocation is returned when a command runs without the root pre-run hook.
var ErrNoInvocation = errors.New("command invocation not initialized")

type invocationKey struct{}

// invocation is the per-invocation state shared by subcommands.
type invocation struct {
	cfg        *config.Config
	cfgErr     error
	configPath string
	projectDir string
	logger     zerolog.Logger
	logResult  *logging.Result
}

// setupInvocation loads configuration, applies environment and flag overrides,
// and configures logging. A config file that cannot be loaded is recorded
// rather than returned so that config subcommands can still report on it.
func setupInvocation(cmd *cobra.Command) (*invocation, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configFlag, _ := cmd.Flags().GetString("config")
	projectFlag, _ := cmd.Flags().GetString("project-dir")

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	rt := &invocation{
		configPath: config.ResolvePath(configFlag),
		projectDir: config.ResolveProjectDir(ctx, projectFlag, wd),
	}

	cfg, err := config.NewWithProjectDir(ctx, rt.configPath, rt.projectDir)
	if err != nil {
		rt.cfgErr = err
		cfg = config.New()
	}
	cfg.ApplyEnv()
	applyFlagOverrides(cmd, cfg)
	rt.cfg = cfg

	setupLogging(cmd, rt)

	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logging.WithContext(ctx, rt.logger.With().Str(logging.FieldTraceID, traceID).Logger())
	ctx = context.WithValue(ctx, invocationKey{}, rt)
	cmd.SetContext(ctx)

	rt.logger.Debug().Ctx(ctx).
		Str("command", cmd.CommandPath()).
		Str("config_path", rt.configPath).
		Str("project_dir", rt.projectDir).
		Msg("command started")

	return rt, nil
}

// applyFlagOverrides applies persistent flags that override config values.
// CLI flags override environment variables and the config file.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("base-url") {
		cfg.Source.BaseURL, _ = cmd.Flags().GetString("base-url")
	}
	if cmd.Flags().Changed("cache") {
		cfg.Cache.Enabled, _ = cmd.Flags().GetBool("cache")
	}
	if ttl, _ := cmd.Flags().GetInt("cache-ttl"); ttl > 0 {
		cfg.Cache.TTLSeconds = ttl
	}
}

// setupLogging builds the logger from the logging section and the --debug flag.
func setupLogging(cmd *cobra.Command, rt *invocation) {
	debug, _ := cmd.Flags().GetBool("debug")
	loggingCfg := rt.cfg.LoggerConfig(debug)
	if debug {
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.Output = logging.OutputStderr
		loggingCfg.File = ""
	}

	result := logging.NewLogger(loggingCfg)
	rt.logResult = result
	rt.logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}
}

// invocationFrom returns the invocation stored by the root pre-run hook.
func invocationFrom(cmd *cobra.Command) (*invocation, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, ErrNoInvocation
	}
	rt, ok := ctx.Value(invocationKey{}).(*invocation)
	if !ok || rt == nil {
		return nil, ErrNoInvocation
	}
	return rt, nil
}

// config returns the effective configuration, or the load or validation error.
func (rt *invocation) config() (*config.Config, error) {
	if rt.cfgErr != nil {
		return nil, rt.cfgErr
	}
	if err := rt.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return rt.cfg, nil
}

// close releases the log file handle.
func (rt *invocation) close() error {
	if rt == nil {
		return nil
	}
	return rt.logResult.Close()
}
