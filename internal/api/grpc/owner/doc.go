// Package owner implements the gRPC transport for the owner service.
//
// The service owner.v1.OwnerService is described by ServiceDesc and carries
// google.protobuf.Struct messages; messages.go converts them to and from
// domain types. Server adapts a business-service interface to the handlers.
package owner
