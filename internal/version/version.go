// Package version holds build metadata for the moviereco binary, injected via ldflags:
//
//	-X github.com/Davleen14/movie-recommendation-system-RAG-LLM/internal/version.Version=v1.2.0
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns a one-line build description for logs and the CLI.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
