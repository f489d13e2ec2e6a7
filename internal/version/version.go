// Package version carries build metadata stamped in by the linker.
package version

var (
	// Version is the release version, "dev" when not stamped.
	Version = "dev"
	// GitSHA is the source commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// UserAgent returns the User-Agent token sent on outbound HTTP requests.
func UserAgent() string {
	return "sunbox/" + Version
}
