// Package version reports the build version of datatable.
package version

// version is set at build time:
//
//	go build -ldflags "-X github.com/rshade/datatable/pkg/version.version=v1.2.3"
//
//nolint:gochecknoglobals // Overridden by the linker.
var version = "dev"

// GetVersion returns the build version.
func GetVersion() string {
	return version
}
