// Package server runs owner-server: it opens the configured store, prepares
// it on start-up and serves OwnerService over gRPC.
//
// Calls are serialized by the service, so two updates never interleave their
// load and save of the owner record.
package server
