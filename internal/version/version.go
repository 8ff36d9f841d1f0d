// Package version carries build metadata for the hackathon binary.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/tradeentry-hackathon/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/tradeentry-hackathon/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/tradeentry-hackathon/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the short git hash.
	Commit = "unknown"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// String returns "version (commit) built time".
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}

// UserAgent is sent with outbound LLM requests.
func UserAgent() string {
	return "tradeentry-hackathon/" + Version
}
