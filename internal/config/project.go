package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rshade/datatable/internal/logging"
)

// EnvProjectDir overrides project directory discovery.
const EnvProjectDir = "DATATABLE_PROJECT_DIR"

// ResolveProjectDir determines the project-local .datatable directory path.
// It checks (in order):
//  1. flagValue (--project-dir CLI flag)
//  2. DATATABLE_PROJECT_DIR env var
//  3. the nearest ancestor of startDir containing a .datatable directory
//
// Returns the absolute path to the .datatable directory or empty string if
// none is found. Does NOT create the directory.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}

	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	home := HomeDir()
	for {
		candidate := filepath.Join(dir, DirName)
		if candidate != home {
			if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// NewWithProjectDir loads the global config at globalPath and shallow-merges
// the project-local config on top. If projectDir is empty or has no config
// file, the global config is returned.
func NewWithProjectDir(ctx context.Context, globalPath, projectDir string) (*Config, error) {
	cfg, err := Load(globalPath)
	if err != nil {
		return nil, err
	}

	if projectDir == "" {
		return cfg, nil
	}

	overlayPath := filepath.Join(projectDir, FileName)
	if _, statErr := os.Stat(overlayPath); statErr != nil {
		if !errors.Is(statErr, os.ErrNotExist) {
			logging.FromContext(ctx).Warn().
				Str(logging.FieldComponent, "config").
				Err(statErr).
				Str("overlay_path", overlayPath).
				Msg("cannot stat project config, using global config")
		}
		return cfg, nil
	}

	merged := *cfg
	if mergeErr := ShallowMergeYAML(&merged, overlayPath); mergeErr != nil {
		logging.FromContext(ctx).Warn().
			Str(logging.FieldComponent, "config").
			Str(logging.FieldOperation, "merge_project_config").
			Err(mergeErr).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global config")
		return cfg, nil
	}
	return &merged, nil
}

// toAbsProjectDir converts dir to an absolute path and appends ".datatable"
// unless it already ends with it.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logging.FromContext(ctx).Warn().
			Str(logging.FieldComponent, "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}

	if filepath.Base(abs) == DirName {
		return abs
	}
	return filepath.Join(abs, DirName)
}
