package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL configuration constants and defaults.
const (
	// DefaultTTLSeconds is the default entry TTL.
	DefaultTTLSeconds = 30

	// MinTTLSeconds is the minimum allowed TTL.
	MinTTLSeconds = 1

	// MaxTTLSeconds is the maximum allowed TTL (1 day).
	MaxTTLSeconds = 86400

	// EnvTTLSeconds overrides the TTL.
	EnvTTLSeconds = "DATATABLE_CACHE_TTL_SECONDS"

	// EnvCacheEnabled enables or disables caching.
	EnvCacheEnabled = "DATATABLE_CACHE_ENABLED"

	// EnvCacheDir overrides the cache directory.
	EnvCacheDir = "DATATABLE_CACHE_DIR"
)

// ErrInvalidTTL is returned for a TTL outside the allowed range.
var ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

// ValidateTTL checks that seconds is within the allowed range.
func ValidateTTL(seconds int) error {
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}
	return nil
}

// TTLFromEnv returns the TTL from the environment, or fallback when unset or invalid.
func TTLFromEnv(fallback int) int {
	envVal := os.Getenv(EnvTTLSeconds)
	if envVal == "" {
		return fallback
	}
	ttl, err := strconv.Atoi(envVal)
	if err != nil || ValidateTTL(ttl) != nil {
		return fallback
	}
	return ttl
}

// EnabledFromEnv returns the enabled flag from the environment, or fallback.
func EnabledFromEnv(fallback bool) bool {
	envVal := os.Getenv(EnvCacheEnabled)
	if envVal == "" {
		return fallback
	}
	enabled, err := strconv.ParseBool(envVal)
	if err != nil {
		return fallback
	}
	return enabled
}

// DirFromEnv returns the cache directory from the environment, or fallback.
func DirFromEnv(fallback string) string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	return fallback
}

// Seconds converts a TTL in seconds to a duration.
func Seconds(ttl int) time.Duration {
	return time.Duration(ttl) * time.Second
}
