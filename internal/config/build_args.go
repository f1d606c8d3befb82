package config

import "fmt"

// ModuleName is the service identifier used in version output and logs.
const ModuleName = "github/caspercreds/go-deploy"

// Build arguments, overridden via -ldflags at release time.
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetFormattedBuildArgs returns "<module> @ <commit> (<build date>)".
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleName, Commit, BuildDate)
}
