package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// IdentityServiceClient calls IdentityService over a connection that was
// dialled with the JSON codec (see Codec).
type IdentityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityServiceClient(cc grpc.ClientConnInterface) *IdentityServiceClient {
	return &IdentityServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *IdentityServiceClient, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec())}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IdentityServiceClient) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, MethodRegisterUser, in, opts...)
}

func (c *IdentityServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, MethodLogin, in, opts...)
}

func (c *IdentityServiceClient) Logout(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodLogout, &Empty{}, opts...)
}

func (c *IdentityServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c, MethodRefreshToken, in, opts...)
}

func (c *IdentityServiceClient) ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodChangePassword, in, opts...)
}

func (c *IdentityServiceClient) GetCurrentUser(ctx context.Context, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, MethodGetCurrentUser, &Empty{}, opts...)
}

func (c *IdentityServiceClient) UpdateAccountDetails(ctx context.Context, in *UpdateAccountDetailsRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, MethodUpdateAccountDetails, in, opts...)
}

func (c *IdentityServiceClient) UpdateAvatar(ctx context.Context, in *UpdateMediaRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, MethodUpdateAvatar, in, opts...)
}

func (c *IdentityServiceClient) UpdateCoverImage(ctx context.Context, in *UpdateMediaRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, MethodUpdateCoverImage, in, opts...)
}

func (c *IdentityServiceClient) GetChannelProfile(ctx context.Context, in *GetChannelProfileRequest, opts ...grpc.CallOption) (*ChannelProfileResponse, error) {
	return invoke[ChannelProfileResponse](ctx, c, MethodGetChannelProfile, in, opts...)
}

func (c *IdentityServiceClient) GetWatchHistory(ctx context.Context, opts ...grpc.CallOption) (*WatchHistoryResponse, error) {
	return invoke[WatchHistoryResponse](ctx, c, MethodGetWatchHistory, &Empty{}, opts...)
}
