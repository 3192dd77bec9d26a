package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "nutrition.auth.v1.AuthService"

const (
	MethodRegister    = "/" + ServiceName + "/Register"
	MethodLogin       = "/" + ServiceName + "/Login"
	MethodRefresh     = "/" + ServiceName + "/Refresh"
	MethodLogout      = "/" + ServiceName + "/Logout"
	MethodCurrentUser = "/" + ServiceName + "/CurrentUser"
)

// AuthServiceServer exchanges google.protobuf.Struct messages whose fields
// mirror the HTTP JSON bodies.
type AuthServiceServer interface {
	Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Refresh(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Logout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CurrentUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(srv AuthServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structCall) func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}

		info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AuthServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{
			MethodName: "Register",
			Handler:    unaryHandler(MethodRegister, AuthServiceServer.Register),
		},
		{
			MethodName: "Login",
			Handler:    unaryHandler(MethodLogin, AuthServiceServer.Login),
		},
		{
			MethodName: "Refresh",
			Handler:    unaryHandler(MethodRefresh, AuthServiceServer.Refresh),
		},
		{
			MethodName: "Logout",
			Handler:    unaryHandler(MethodLogout, AuthServiceServer.Logout),
		},
		{
			MethodName: "CurrentUser",
			Handler:    unaryHandler(MethodCurrentUser, AuthServiceServer.CurrentUser),
		},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "nutrition/auth/v1/auth.proto",
}

func RegisterAuthServiceServer(s gogrpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

// AuthServiceClient is the client side of AuthServiceDesc.
type AuthServiceClient struct {
	cc gogrpc.ClientConnInterface
}

func NewAuthServiceClient(cc gogrpc.ClientConnInterface) *AuthServiceClient {
	return &AuthServiceClient{cc: cc}
}

func (c *AuthServiceClient) Register(ctx context.Context, in *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodRegister, in, opts...)
}

func (c *AuthServiceClient) Login(ctx context.Context, in *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodLogin, in, opts...)
}

func (c *AuthServiceClient) Refresh(ctx context.Context, in *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodRefresh, in, opts...)
}

func (c *AuthServiceClient) Logout(ctx context.Context, in *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodLogout, in, opts...)
}

func (c *AuthServiceClient) CurrentUser(ctx context.Context, in *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCurrentUser, in, opts...)
}

func (c *AuthServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
