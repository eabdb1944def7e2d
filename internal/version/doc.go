// Package version exposes build metadata for the project.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds. Name and
// Version are also written to the contract info record so a store can tell
// which program and release last migrated it.
package version
