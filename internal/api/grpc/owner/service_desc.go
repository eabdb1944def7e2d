package owner

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "owner.v1.OwnerService"

// Full method names.
const (
	GetOwnerMethod    = "/" + ServiceName + "/GetOwner"
	IsOwnerMethod     = "/" + ServiceName + "/IsOwner"
	UpdateOwnerMethod = "/" + ServiceName + "/UpdateOwner"
)

// Handler is the server-side API of OwnerService.
type Handler interface {
	GetOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	IsOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes OwnerService for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // grpc requires a package-level descriptor.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetOwner",
			Handler:    unaryHandler(GetOwnerMethod, Handler.GetOwner),
		},
		{
			MethodName: "IsOwner",
			Handler:    unaryHandler(IsOwnerMethod, Handler.IsOwner),
		},
		{
			MethodName: "UpdateOwner",
			Handler:    unaryHandler(UpdateOwnerMethod, Handler.UpdateOwner),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "owner/v1/owner.proto",
}

// Register adds handler to the gRPC server.
func Register(registrar grpc.ServiceRegistrar, handler Handler) {
	registrar.RegisterService(&ServiceDesc, handler)
}

// unaryMethod is a Handler method expression.
type unaryMethod func(Handler, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler builds the grpc.MethodDesc handler for one method, decoding the
// request and running the interceptor chain.
func unaryHandler(fullMethod string, method unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return method(srv.(Handler), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(Handler), ctx, req.(*structpb.Struct))
		}

		return interceptor(ctx, in, info, handler)
	}
}
