package version

// Set at build time via -ldflags "-X github.com/genomics-tools/datacheck/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
