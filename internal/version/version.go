// Package version holds the release version reported by the CLI and the HTTP status endpoint.
package version

// Current is bumped on release. No "v" prefix.
const Current = "0.1.0"
