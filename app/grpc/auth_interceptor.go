package grpc

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-nutrition/app/entity"
	"github.com/vibast-solutions/ms-go-nutrition/app/service"
	"github.com/vibast-solutions/ms-go-nutrition/app/types"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type currentUserKey struct{}

type currentUserResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*entity.User, error)
}

// BearerUnaryInterceptor resolves "authorization: Bearer <token>" metadata for
// the listed methods and stores the user in the handler context. Other
// methods pass through untouched.
func BearerUnaryInterceptor(resolver currentUserResolver, methods ...string) gogrpc.UnaryServerInterceptor {
	protected := make(map[string]struct{}, len(methods))
	for _, method := range methods {
		protected[method] = struct{}{}
	}

	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		if _, ok := protected[info.FullMethod]; !ok {
			return handler(ctx, req)
		}

		token, ok := types.ParseBearerToken(incomingAuthorization(ctx))
		if !ok {
			logrus.WithField("method", info.FullMethod).Debug("Missing or malformed bearer metadata (grpc)")
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}

		user, err := resolver.CurrentUser(ctx, token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidOrExpiredToken) {
				logrus.WithField("method", info.FullMethod).Debug("Invalid or expired access token (grpc)")
				return nil, status.Error(codes.Unauthenticated, "unauthorized")
			}
			logrus.WithError(err).Error("Failed to resolve current user (grpc)")
			return nil, status.Error(codes.Internal, "internal server error")
		}

		return handler(context.WithValue(ctx, currentUserKey{}, user), req)
	}
}

func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(currentUserKey{}).(*entity.User)
	return user, ok && user != nil
}

func incomingAuthorization(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
