package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	accountKey ctxKey = "account"

	requestIDMetadata = "x-request-id"
)

// protectedMethods require a bearer token in the authorization metadata.
var protectedMethods = map[string]bool{
	pb.MeMethod: true,
}

func firstMetadata(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) requestIDInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx = logging.WithRequestID(ctx, firstMetadata(ctx, requestIDMetadata))
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadata, logging.RequestID(ctx)))

	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "grpc request", "method", info.FullMethod, "code", status.Code(err).String())
	return resp, err
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if protectedMethods[info.FullMethod] {

		token, ok := auth.BearerToken(firstMetadata(ctx, common.AuthorizationHeaderName))
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		account, err := s.resolver.Resolve(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				s.logger.Debug(ctx, "request not authenticated", "error", err)
				return nil, status.Error(codes.Unauthenticated, "could not validate credentials")
			}
			return nil, status.Error(codes.Internal, "internal error")
		}

		ctx = context.WithValue(ctx, accountKey, account)

	}

	return handler(ctx, req)
}

func accountFromContext(ctx context.Context) (*models.PublicAccount, bool) {
	account, ok := ctx.Value(accountKey).(*models.PublicAccount)
	return account, ok
}
