package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/worklog/internal/common"
	pb "github.com/dmitrijs2005/worklog/internal/proto"
	"github.com/dmitrijs2005/worklog/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const clientKey ctxKey = "client"

// ClientFromContext returns the client name the access key was issued to.
func ClientFromContext(ctx context.Context) (string, bool) {
	c, ok := ctx.Value(clientKey).(string)
	return c, ok
}

func firstMD(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// accessKeyInterceptor rejects calls without a valid access key. Ping is
// open so clients can probe connectivity before authenticating.
func (s *GRPCServer) accessKeyInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod == pb.ActivityService_Ping_FullMethodName {
		return handler(ctx, req)
	}

	key := firstMD(ctx, common.AccessKeyHeaderName)
	if key == "" {
		return nil, status.Error(codes.Unauthenticated, "missing access key")
	}

	client, err := auth.ParseAccessKey(key, s.secret)
	if err != nil {
		if errors.Is(err, auth.ErrAccessKeyExpired) {
			return nil, status.Error(codes.Unauthenticated, "access key expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid access key")
	}

	ctx = context.WithValue(ctx, clientKey, client)
	return handler(ctx, req)
}

// requestLogInterceptor logs every call with its request id, method,
// outcome and latency.
func (s *GRPCServer) requestLogInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := firstMD(ctx, common.RequestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	started := time.Now()
	resp, err := handler(ctx, req)

	log := s.logger.With("request_id", requestID, "method", info.FullMethod)
	code := status.Code(err)
	if code == codes.OK || code == codes.Unauthenticated || code == codes.InvalidArgument ||
		code == codes.FailedPrecondition || code == codes.NotFound {
		log.Info(ctx, "request", "code", code.String(), "duration", time.Since(started))
	} else {
		log.Error(ctx, "request failed", "code", code.String(), "duration", time.Since(started), "error", err)
	}

	return resp, err
}
