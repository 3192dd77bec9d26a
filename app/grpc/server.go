package grpc

import (
	"context"
	"encoding/json"
	"errors"

	httpdto "github.com/vibast-solutions/ms-go-nutrition/app/dto/http"
	"github.com/vibast-solutions/ms-go-nutrition/app/service"
	"github.com/vibast-solutions/ms-go-nutrition/app/types"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type AuthServer struct {
	authService service.AuthService
}

func NewAuthServer(authService service.AuthService) *AuthServer {
	return &AuthServer{authService: authService}
}

func (s *AuthServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req types.RegisterRequest
	if err := decodeStruct(in, &req); err != nil {
		logrus.WithError(err).Debug("Failed to decode register request (grpc)")
		return nil, status.Error(codes.InvalidArgument, "invalid request body")
	}

	if err := req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Register validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	logrus.WithField("email", req.Email).Info("Register request received (grpc)")
	res, err := s.authService.Register(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			logrus.WithField("email", req.Email).Warn("Register failed: email already registered (grpc)")
			return nil, status.Error(codes.AlreadyExists, service.ErrDuplicateEmail.Error())
		}
		if errors.Is(err, service.ErrValidation) {
			logrus.WithField("email", req.Email).Warn("Register failed: password rejected by policy (grpc)")
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Register failed (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	logrus.WithField("email", req.Email).Info("User registered (grpc)")
	return toStruct(res)
}

func (s *AuthServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req types.LoginRequest
	if err := decodeStruct(in, &req); err != nil {
		logrus.WithError(err).Debug("Failed to decode login request (grpc)")
		return nil, status.Error(codes.InvalidArgument, "invalid request body")
	}

	if err := req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	logrus.WithField("email", req.Email).Info("Login request received (grpc)")
	res, err := s.authService.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials (grpc)")
			return nil, status.Error(codes.Unauthenticated, service.ErrInvalidCredentials.Error())
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	logrus.WithField("email", req.Email).Info("Login successful (grpc)")
	return toStruct(res)
}

func (s *AuthServer) Refresh(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req types.RefreshTokenRequest
	if err := decodeStruct(in, &req); err != nil {
		logrus.WithError(err).Debug("Failed to decode refresh request (grpc)")
		return nil, status.Error(codes.InvalidArgument, "invalid request body")
	}

	if err := req.Validate(); err != nil {
		logrus.Debug("Refresh validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	logrus.Info("Refresh request received (grpc)")
	res, err := s.authService.Refresh(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			logrus.Warn("Refresh failed: invalid or expired token (grpc)")
			return nil, status.Error(codes.Unauthenticated, "invalid or expired refresh token")
		}
		logrus.WithError(err).Error("Refresh failed (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	logrus.Info("Refresh successful (grpc)")
	return toStruct(res)
}

func (s *AuthServer) Logout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req types.RefreshTokenRequest
	if err := decodeStruct(in, &req); err != nil {
		logrus.WithError(err).Debug("Failed to decode logout request (grpc)")
	} else {
		_ = s.authService.Logout(ctx, &req)
	}

	logrus.Info("Logout processed (grpc)")
	return toStruct(httpdto.LogoutResponse{Message: httpdto.LogoutMessage})
}

// CurrentUser relies on BearerUnaryInterceptor having resolved the caller.
func (s *AuthServer) CurrentUser(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		logrus.Warn("Current user failed: missing user in context (grpc)")
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	return toStruct(httpdto.NewUserResponse(user))
}

func decodeStruct(in *structpb.Struct, out any) error {
	payload, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func toStruct(v any) (*structpb.Struct, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode response (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	out := new(structpb.Struct)
	if err = protojson.Unmarshal(payload, out); err != nil {
		logrus.WithError(err).Error("Failed to encode response (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}
