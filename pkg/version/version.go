// Package version exposes the preheat build version.
package version

// Version is the preheat version string. Release builds override it via
// -ldflags "-X github.com/rshade/preheat/pkg/version.Version=vX.Y.Z".
//
//nolint:gochecknoglobals // Set at build time via ldflags
var Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
