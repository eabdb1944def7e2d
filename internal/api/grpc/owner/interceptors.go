package owner

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/owner-guard/internal/logger"
)

// Limiter decides whether a caller may perform another update.
type Limiter interface {
	Allow(key string, now time.Time) bool
}

// RateLimitInterceptor throttles UpdateOwner per sender. Other methods pass through.
// onReject, when set, is called for every rejected request.
func RateLimitInterceptor(limiter Limiter, onReject func()) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if limiter == nil || info.FullMethod != UpdateOwnerMethod {
			return handler(ctx, req)
		}

		msg, _ := req.(*structpb.Struct)
		sender := msg.GetFields()[fieldSender].GetStringValue()

		if !limiter.Allow(sender, time.Now()) {
			if onReject != nil {
				onReject()
			}

			logger.WarnKV(ctx, "Update throttled", "sender", sender)

			return nil, status.Error(codes.ResourceExhausted, "too many updates, retry later")
		}

		return handler(ctx, req)
	}
}

// LoggingInterceptor logs every call with its status code and duration.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err)
		kvs := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(started)}

		switch code {
		case codes.OK:
			logger.DebugKV(ctx, "RPC finished", kvs...)
		case codes.Internal, codes.Unknown:
			logger.ErrorKV(ctx, "RPC failed", append(kvs, "error", err)...)
		default:
			logger.InfoKV(ctx, "RPC rejected", append(kvs, "error", err)...)
		}

		return resp, err
	}
}
