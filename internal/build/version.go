package build

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// EngineVersion is stamped into every cached fragment. Bump it whenever the
// rewritten markup changes shape so stale fragments are recomputed.
const EngineVersion = "1.1.0"

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}
