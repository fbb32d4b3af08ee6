package grpc

import (
	"context"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"github.com/dmitrijs2005/vidkeeper/internal/filex"
	"github.com/dmitrijs2005/vidkeeper/internal/server/models"
	"github.com/dmitrijs2005/vidkeeper/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var cookieOptions = services.ArtifactOptions{HTTPOnly: true, Secure: true}

// fail logs err and converts it to a status error.
func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	if common.KindOf(err) == common.ErrorInternal {
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	} else {
		s.logger.Info(ctx, "request rejected", "method", method, "reason", common.Message(err))
	}
	return toStatus(err)
}

// stage writes an inline upload into the upload dir. Missing or empty uploads
// stage nothing.
func (s *GRPCServer) stage(f *FileUpload) (string, error) {
	if f == nil || len(f.Data) == 0 {
		return "", nil
	}
	path, err := filex.StageUpload(s.uploadDir, f.Name, f.Data)
	if err != nil {
		return "", common.WrapError(common.ErrorInternal, "error staging upload", err)
	}
	return path, nil
}

func (s *GRPCServer) callerID(ctx context.Context) (string, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return user.ID, nil
}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *RegisterUserRequest) (*UserResponse, error) {

	s.logger.Info(ctx, "Registration request")

	avatarPath, err := s.stage(req.Avatar)
	if err != nil {
		return nil, s.fail(ctx, MethodRegisterUser, err)
	}

	coverPath, err := s.stage(req.CoverImage)
	if err != nil {
		_ = filex.Remove(avatarPath)
		return nil, s.fail(ctx, MethodRegisterUser, err)
	}

	profile, err := s.identity.Register(ctx, services.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		UserName: req.Username,
		Password: req.Password,
	}, avatarPath, coverPath)
	if err != nil {
		return nil, s.fail(ctx, MethodRegisterUser, err)
	}

	s.logger.Info(ctx, "Registered", "username", profile.UserName)
	return &UserResponse{User: profile}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {

	cookies := &cookieArtifacts{}

	res, err := s.sessions.Login(ctx, services.LoginInput{
		UserName: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, cookies)
	if err != nil {
		return nil, s.fail(ctx, MethodLogin, err)
	}

	s.sendCookies(ctx, cookies)

	return &LoginResponse{User: res.User, AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *Empty) (*Empty, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}

	cookies := &cookieArtifacts{}
	if err := s.sessions.Logout(ctx, userID, cookies); err != nil {
		return nil, s.fail(ctx, MethodLogout, err)
	}

	s.sendCookies(ctx, cookies)
	return &Empty{}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	presented := req.RefreshToken
	if presented == "" {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			presented = cookieValue(md, common.RefreshTokenCookieName)
		}
	}

	pair, err := s.sessions.Refresh(ctx, presented)
	if err != nil {
		return nil, s.fail(ctx, MethodRefreshToken, err)
	}

	cookies := &cookieArtifacts{}
	cookies.Set(common.AccessTokenCookieName, pair.AccessToken, cookieOptions)
	cookies.Set(common.RefreshTokenCookieName, pair.RefreshToken, cookieOptions)
	s.sendCookies(ctx, cookies)

	return &RefreshTokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *ChangePasswordRequest) (*Empty, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		return nil, s.fail(ctx, MethodChangePassword, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) GetCurrentUser(ctx context.Context, _ *Empty) (*UserResponse, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.identity.CurrentUser(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, MethodGetCurrentUser, err)
	}
	return &UserResponse{User: profile}, nil
}

func (s *GRPCServer) UpdateAccountDetails(ctx context.Context, req *UpdateAccountDetailsRequest) (*UserResponse, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.identity.UpdateAccountDetails(ctx, userID, req.FullName, req.Email)
	if err != nil {
		return nil, s.fail(ctx, MethodUpdateAccountDetails, err)
	}
	return &UserResponse{User: profile}, nil
}

func (s *GRPCServer) UpdateAvatar(ctx context.Context, req *UpdateMediaRequest) (*UserResponse, error) {
	return s.updateMedia(ctx, MethodUpdateAvatar, req, s.identity.UpdateAvatar)
}

func (s *GRPCServer) UpdateCoverImage(ctx context.Context, req *UpdateMediaRequest) (*UserResponse, error) {
	return s.updateMedia(ctx, MethodUpdateCoverImage, req, s.identity.UpdateCoverImage)
}

func (s *GRPCServer) updateMedia(ctx context.Context, method string, req *UpdateMediaRequest,
	update func(ctx context.Context, userID, path string) (*models.Profile, error)) (*UserResponse, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}

	path, err := s.stage(req.File)
	if err != nil {
		return nil, s.fail(ctx, method, err)
	}

	profile, err := update(ctx, userID, path)
	if err != nil {
		return nil, s.fail(ctx, method, err)
	}
	return &UserResponse{User: profile}, nil
}

func (s *GRPCServer) GetChannelProfile(ctx context.Context, req *GetChannelProfileRequest) (*ChannelProfileResponse, error) {
	viewerID := ""
	if user, ok := UserFromContext(ctx); ok {
		viewerID = user.ID
	}

	channel, err := s.channels.ChannelProfile(ctx, viewerID, req.Username)
	if err != nil {
		return nil, s.fail(ctx, MethodGetChannelProfile, err)
	}
	return &ChannelProfileResponse{Channel: channel}, nil
}

func (s *GRPCServer) GetWatchHistory(ctx context.Context, _ *Empty) (*WatchHistoryResponse, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}

	videos, err := s.channels.WatchHistory(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, MethodGetWatchHistory, err)
	}
	return &WatchHistoryResponse{Videos: videos}, nil
}
