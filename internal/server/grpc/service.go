package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vidkeeper.v1.IdentityService"

const (
	MethodRegisterUser         = "RegisterUser"
	MethodLogin                = "Login"
	MethodLogout               = "Logout"
	MethodRefreshToken         = "RefreshToken"
	MethodChangePassword       = "ChangePassword"
	MethodGetCurrentUser       = "GetCurrentUser"
	MethodUpdateAccountDetails = "UpdateAccountDetails"
	MethodUpdateAvatar         = "UpdateAvatar"
	MethodUpdateCoverImage     = "UpdateCoverImage"
	MethodGetChannelProfile    = "GetChannelProfile"
	MethodGetWatchHistory      = "GetWatchHistory"
)

// FullMethod returns "/<service>/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// IdentityServiceServer is the server API of IdentityService.
type IdentityServiceServer interface {
	RegisterUser(context.Context, *RegisterUserRequest) (*UserResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*Empty, error)
	GetCurrentUser(context.Context, *Empty) (*UserResponse, error)
	UpdateAccountDetails(context.Context, *UpdateAccountDetailsRequest) (*UserResponse, error)
	UpdateAvatar(context.Context, *UpdateMediaRequest) (*UserResponse, error)
	UpdateCoverImage(context.Context, *UpdateMediaRequest) (*UserResponse, error)
	GetChannelProfile(context.Context, *GetChannelProfileRequest) (*ChannelProfileResponse, error)
	GetWatchHistory(context.Context, *Empty) (*WatchHistoryResponse, error)
}

func unary[Req, Resp any](name string, call func(IdentityServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(IdentityServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes IdentityService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegisterUser, IdentityServiceServer.RegisterUser),
		unary(MethodLogin, IdentityServiceServer.Login),
		unary(MethodLogout, IdentityServiceServer.Logout),
		unary(MethodRefreshToken, IdentityServiceServer.RefreshToken),
		unary(MethodChangePassword, IdentityServiceServer.ChangePassword),
		unary(MethodGetCurrentUser, IdentityServiceServer.GetCurrentUser),
		unary(MethodUpdateAccountDetails, IdentityServiceServer.UpdateAccountDetails),
		unary(MethodUpdateAvatar, IdentityServiceServer.UpdateAvatar),
		unary(MethodUpdateCoverImage, IdentityServiceServer.UpdateCoverImage),
		unary(MethodGetChannelProfile, IdentityServiceServer.GetChannelProfile),
		unary(MethodGetWatchHistory, IdentityServiceServer.GetWatchHistory),
	},
	Metadata: "vidkeeper/v1/identity",
}

// RegisterIdentityServiceServer registers srv on s.
func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
