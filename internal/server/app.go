// Package server wires configuration, storage, media, services and transport
// together and runs the vidkeeper server until it is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/vidkeeper/internal/filex"
	"github.com/dmitrijs2005/vidkeeper/internal/logging"
	"github.com/dmitrijs2005/vidkeeper/internal/server/auth"
	"github.com/dmitrijs2005/vidkeeper/internal/server/config"
	"github.com/dmitrijs2005/vidkeeper/internal/server/media"
	"github.com/dmitrijs2005/vidkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/vidkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/vidkeeper/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	uploadDir   string
	registry    *prometheus.Registry
	grpcMetrics *metrics.GRPCMetrics
	sessions    *services.SessionService
	identity    *services.IdentityService
	channels    *services.ChannelService
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	issuer, err := auth.NewIssuer(c.AccessTokenSecret, c.RefreshTokenSecret,
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	uploadDir, err := filex.EnsureSubdDir(c.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir init error: %w", err)
	}

	ctx := context.Background()

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	uploader, err := media.NewS3Uploader(ctx, media.Options{
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		PublicURL:    c.S3PublicURL,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("media init error: %w", err)
	}

	registry := metrics.NewRegistry()

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		uploadDir:   uploadDir,
		registry:    registry,
		grpcMetrics: metrics.NewGRPCMetrics(registry),
		sessions:    services.NewSessionService(db, rm, issuer, logger),
		identity:    services.NewIdentityService(db, rm, uploader, logger),
		channels:    services.NewChannelService(db, rm, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.sessions, app.identity, app.channels, app.uploadDir,
		gs.WithUnaryInterceptors(app.grpcMetrics.UnaryServerInterceptor()))

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if app.config.MetricsAddr == "" {
		return
	}
	if err := metrics.Serve(ctx, app.config.MetricsAddr, app.registry, app.logger.With("module", "metrics")); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	if z, ok := app.logger.(*logging.ZapLogger); ok {
		_ = z.Sync()
	}
}
