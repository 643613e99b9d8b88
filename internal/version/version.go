// Package version exposes build information stamped at link time.
package version

import "runtime"

// Set via -ldflags at build time, e.g.
// go build -ldflags "-X mutevote/internal/version.Version=v1.2.0 -X mutevote/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds the build information reported by the version endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}
