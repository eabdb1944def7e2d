package owner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/owner-guard/internal/domain/owner"
)

// denyList is a Limiter that rejects the listed keys.
type denyList map[string]bool

// Allow implements Limiter.
func (d denyList) Allow(key string, _ time.Time) bool {
	return !d[key]
}

// TestRateLimitInterceptor verifies only UpdateOwner calls are throttled per sender.
func TestRateLimitInterceptor(t *testing.T) {
	t.Parallel()

	rejected := 0
	interceptor := RateLimitInterceptor(denyList{"mallory": true}, func() { rejected++ })

	called := 0
	handler := func(context.Context, any) (any, error) {
		called++
		return new(structpb.Struct), nil
	}

	update := &grpc.UnaryServerInfo{FullMethod: UpdateOwnerMethod}
	query := &grpc.UnaryServerInfo{FullMethod: GetOwnerMethod}

	req, err := EncodeUpdateRequest("mallory", domain.ClearStatus{})
	require.NoError(t, err)

	_, err = interceptor(context.Background(), req, update, handler)
	require.Equal(t, codes.ResourceExhausted, status.Code(err))
	require.Equal(t, 1, rejected)
	require.Zero(t, called)

	_, err = interceptor(context.Background(), req, query, handler)
	require.NoError(t, err)

	req, err = EncodeUpdateRequest("alice", domain.ClearStatus{})
	require.NoError(t, err)

	_, err = interceptor(context.Background(), req, update, handler)
	require.NoError(t, err)
	require.Equal(t, 2, called)
}

// TestLoggingInterceptor ensures the handler result is passed through unchanged.
func TestLoggingInterceptor(t *testing.T) {
	t.Parallel()

	want := status.Error(codes.PermissionDenied, "caller is not owner")
	info := &grpc.UnaryServerInfo{FullMethod: UpdateOwnerMethod}

	_, err := LoggingInterceptor()(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, want
	})
	require.Equal(t, want, err)
}
