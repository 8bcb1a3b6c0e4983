// Package misc keeps program identity values which are set at build time.
package misc

// Set with -ldflags "-X fragmerge/misc.version=... -X fragmerge/misc.gitHash=...".
var (
	appName = "fragmerge"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
