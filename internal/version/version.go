// Package version provides build-time version information.
package version

// Version is the semantic version, overridable at build time via -ldflags.
var Version = "0.1.0"
