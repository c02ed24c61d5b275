package env

// Build metadata, overridden at link time with
// -ldflags "-X github.com/ostafen/vsfs/internal/env.Version=...".
var (
	AppName    = "vsfs"
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)
