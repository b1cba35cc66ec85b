// Package version holds the release string, overridden at link time with
// -ldflags "-X github.com/bnema/amxbpm-admin-cli/internal/version.Version=...".
package version

import (
	"runtime/debug"
	"strings"
)

var Version = "dev"

// Detail adds the toolchain and VCS revision recorded in the binary.
func Detail() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}

	parts := []string{Version, info.GoVersion}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 12 {
			parts = append(parts, "rev "+setting.Value[:12])
		}
	}
	return strings.Join(parts, " ")
}
