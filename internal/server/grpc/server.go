package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/vidkeeper/internal/logging"
	"github.com/dmitrijs2005/vidkeeper/internal/server/models"
	"github.com/dmitrijs2005/vidkeeper/internal/server/services"
	"google.golang.org/grpc"
)

// SessionManager is the session API the transport needs.
type SessionManager interface {
	Login(ctx context.Context, in services.LoginInput, artifacts services.SessionArtifacts) (*services.LoginResult, error)
	Logout(ctx context.Context, userID string, artifacts services.SessionArtifacts) error
	Refresh(ctx context.Context, presented string) (*services.TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	Authenticate(ctx context.Context, accessToken string) (*models.Profile, error)
}

// IdentityManager is the account API the transport needs.
type IdentityManager interface {
	Register(ctx context.Context, in services.RegisterInput, avatarPath, coverPath string) (*models.Profile, error)
	CurrentUser(ctx context.Context, userID string) (*models.Profile, error)
	UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.Profile, error)
	UpdateAvatar(ctx context.Context, userID, path string) (*models.Profile, error)
	UpdateCoverImage(ctx context.Context, userID, path string) (*models.Profile, error)
}

// ChannelReader is the read-side graph API the transport needs.
type ChannelReader interface {
	ChannelProfile(ctx context.Context, viewerID, username string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error)
}

type GRPCServer struct {
	address      string
	sessions     SessionManager
	identity     IdentityManager
	channels     ChannelReader
	uploadDir    string
	logger       logging.Logger
	interceptors []grpc.UnaryServerInterceptor
}

// Option customises a GRPCServer.
type Option func(*GRPCServer)

// WithUnaryInterceptors runs the given interceptors before authentication.
func WithUnaryInterceptors(i ...grpc.UnaryServerInterceptor) Option {
	return func(s *GRPCServer) { s.interceptors = append(s.interceptors, i...) }
}

func NewGRPCServer(a string, l logging.Logger, sm SessionManager, im IdentityManager, cr ChannelReader, uploadDir string, opts ...Option) (*GRPCServer, error) {
	if sm == nil || im == nil || cr == nil {
		return nil, errors.New("grpc server: services are required")
	}
	if uploadDir == "" {
		return nil, errors.New("grpc server: upload dir is required")
	}

	s := &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		sessions:  sm,
		identity:  im,
		channels:  cr,
		uploadDir: uploadDir,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// NewServer builds a grpc.Server with IdentityService registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	chain := append(append([]grpc.UnaryServerInterceptor{}, s.interceptors...), s.accessTokenInterceptor)

	srv := grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.ChainUnaryInterceptor(chain...),
	)

	RegisterIdentityServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
