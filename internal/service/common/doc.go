// Package common holds helpers shared by several services.
//
// It provides a lightweight OwnerService gRPC client with timeouts and a
// helper that derives the caller account from the local user name.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
