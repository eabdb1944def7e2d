package owner

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/owner-guard/internal/domain/envelope"
	domain "github.com/oshokin/owner-guard/internal/domain/owner"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Query(ctx context.Context) (*domain.Response, error)
	IsOwner(ctx context.Context, candidate domain.AccountID) (bool, error)
	Update(ctx context.Context, sender domain.AccountID, event domain.Update) (*envelope.Envelope, error)
}

// Server implements the OwnerService gRPC API.
type Server struct {
	// service provides the business logic for owner operations.
	service Service
}

var _ Handler = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetOwner returns the current owner and status.
func (s *Server) GetOwner(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.service.Query(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return EncodeOwnerResponse(resp), nil
}

// IsOwner reports whether the requested account is the current owner.
func (s *Server) IsOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := DecodeIsOwnerRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	isOwner, err := s.service.IsOwner(ctx, domain.AccountID(account))
	if err != nil {
		return nil, toStatus(err)
	}

	return EncodeIsOwnerResponse(isOwner), nil
}

// UpdateOwner applies an owner event on behalf of the sender.
func (s *Server) UpdateOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	update, err := DecodeUpdateRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	env, err := s.service.Update(ctx, update.Sender, update.Event)
	if err != nil {
		return nil, toStatus(err)
	}

	return EncodeEnvelope(env), nil
}

// toStatus maps domain error kinds to gRPC status codes.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch domain.KindOf(err) {
	case domain.KindNotOwner:
		return status.Error(codes.PermissionDenied, err.Error())
	case domain.KindValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.KindUninitialized:
		return status.Error(codes.FailedPrecondition, err.Error())
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "owner service failure")
	}
}
