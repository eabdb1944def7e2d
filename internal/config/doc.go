// Package config defines the settings shared by the owner-guard binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Config holds the gRPC server address, the storage backend for the owner
// record, the identity used when the record is first created, and optional
// metrics and rate limiting settings.
package config
