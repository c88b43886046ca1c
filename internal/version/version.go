// Package version holds the application version string.
// The value is overridden at build time via -ldflags.
package version

// Version is the application version reported by the system endpoint.
var Version = "0.3.0"
