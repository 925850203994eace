package config

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = "1.0.0"

// SupportedVersions is the schema range this build reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// Version errors.
var (
	ErrInvalidVersion     = errors.New("invalid config version")
	ErrUnsupportedVersion = errors.New("unsupported config version")
)

// CheckVersion verifies that a config schema version is readable. An empty
// version is treated as CurrentVersion.
func CheckVersion(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidVersion, version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("parsing supported range: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedVersion, v, SupportedVersions)
	}
	return nil
}
