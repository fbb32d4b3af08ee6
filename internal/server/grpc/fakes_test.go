package grpc

import (
	"context"
	"os"
	"sync"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"github.com/dmitrijs2005/vidkeeper/internal/logging"
	"github.com/dmitrijs2005/vidkeeper/internal/server/models"
	"github.com/dmitrijs2005/vidkeeper/internal/server/services"
	"google.golang.org/grpc/metadata"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

var alice = &models.Profile{ID: "u-alice", UserName: "alice", Email: "alice@example.com", FullName: "Alice A"}

type fakeSessions struct {
	mu          sync.Mutex
	tokens      map[string]*models.Profile
	loginErr    error
	logoutErr   error
	changeErr   error
	lastLogin   services.LoginInput
	lastRefresh string
	loggedOut   []string
	changed     []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]*models.Profile{"access-1": alice}}
}

func (f *fakeSessions) Login(ctx context.Context, in services.LoginInput, a services.SessionArtifacts) (*services.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLogin = in
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	opts := services.ArtifactOptions{HTTPOnly: true, Secure: true}
	a.Set(common.AccessTokenCookieName, "access-1", opts)
	a.Set(common.RefreshTokenCookieName, "refresh-1", opts)
	return &services.LoginResult{User: alice, AccessToken: "access-1", RefreshToken: "refresh-1"}, nil
}

func (f *fakeSessions) Logout(ctx context.Context, userID string, a services.SessionArtifacts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.loggedOut = append(f.loggedOut, userID)
	opts := services.ArtifactOptions{HTTPOnly: true, Secure: true}
	a.Clear(common.AccessTokenCookieName, opts)
	a.Clear(common.RefreshTokenCookieName, opts)
	return nil
}

func (f *fakeSessions) Refresh(ctx context.Context, presented string) (*services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRefresh = presented
	if presented != "refresh-1" {
		return nil, common.NewError(common.ErrorUnauthorized, "refresh token is expired or used")
	}
	return &services.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (f *fakeSessions) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.changeErr != nil {
		return f.changeErr
	}
	f.changed = []string{userID, oldPassword, newPassword}
	return nil
}

func (f *fakeSessions) Authenticate(ctx context.Context, accessToken string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.tokens[accessToken]; ok {
		return p, nil
	}
	return nil, common.NewError(common.ErrorUnauthorized, "invalid access token")
}

type fakeIdentity struct {
	mu          sync.Mutex
	registerErr error
	updateErr   error
	lastInput   services.RegisterInput
	staged      map[string][]byte
	paths       []string
}

func newFakeIdentity() *fakeIdentity { return &fakeIdentity{staged: map[string][]byte{}} }

// capture records the contents of a staged file as seen by the service.
func (f *fakeIdentity) capture(path string) {
	f.paths = append(f.paths, path)
	if path == "" {
		return
	}
	if b, err := os.ReadFile(path); err == nil {
		f.staged[path] = b
	}
}

func (f *fakeIdentity) Register(ctx context.Context, in services.RegisterInput, avatarPath, coverPath string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastInput = in
	f.capture(avatarPath)
	f.capture(coverPath)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.Profile{ID: "u-new", UserName: in.UserName, Email: in.Email, FullName: in.FullName}, nil
}

func (f *fakeIdentity) CurrentUser(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == alice.ID {
		return alice, nil
	}
	return nil, common.NewError(common.ErrorNotFound, "user does not exist")
}

func (f *fakeIdentity) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.Profile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Profile{ID: userID, FullName: fullName, Email: email}, nil
}

func (f *fakeIdentity) UpdateAvatar(ctx context.Context, userID, path string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capture(path)
	if path == "" {
		return nil, common.NewError(common.ErrorBadRequest, "avatar file is missing")
	}
	return &models.Profile{ID: userID, Avatar: "http://cdn/new-avatar"}, nil
}

func (f *fakeIdentity) UpdateCoverImage(ctx context.Context, userID, path string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capture(path)
	if path == "" {
		return nil, common.NewError(common.ErrorBadRequest, "cover image file is missing")
	}
	return &models.Profile{ID: userID, CoverImage: "http://cdn/new-cover"}, nil
}

type fakeChannels struct {
	mu         sync.Mutex
	lastViewer string
	historyErr error
}

func (f *fakeChannels) ChannelProfile(ctx context.Context, viewerID, username string) (*models.ChannelProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastViewer = viewerID
	if username != "chan" {
		return nil, common.NewError(common.ErrorNotFound, "channel does not exist")
	}
	return &models.ChannelProfile{ID: "c1", UserName: "chan", IsSubscribed: viewerID != ""}, nil
}

func (f *fakeChannels) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return []models.WatchedVideo{{ID: "v1", Owner: &models.VideoOwner{ID: "o1"}}, {ID: "v2"}}, nil
}

// fakeStream captures headers set by handlers.
type fakeStream struct {
	header metadata.MD
}

func (s *fakeStream) Method() string { return "" }
func (s *fakeStream) SetHeader(md metadata.MD) error {
	s.header = metadata.Join(s.header, md)
	return nil
}
func (s *fakeStream) SendHeader(md metadata.MD) error { return s.SetHeader(md) }
func (s *fakeStream) SetTrailer(metadata.MD) error    { return nil }
