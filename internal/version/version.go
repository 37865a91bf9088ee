// Package version holds the application version, set at build time via
// -ldflags "-X github.com/qifin/lotledger/internal/version.Version=...".
package version

// Version is the application version string.
var Version = "dev"
