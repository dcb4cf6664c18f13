// Package server assembles the authkeeper server: logger, credential store,
// password hashing, token codec, services and the HTTP and gRPC transports.
package server

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	auth     *services.AuthService
	sessions *services.SessionResolver
}

// NewApp opens the store, applies migrations and builds the services. Logs
// go to w as JSON.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {

	logger, err := logging.New(w, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	repos, err := repomanager.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	hasher, err := cryptox.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("hasher init error: %w", err)
	}
	pool := cryptox.NewHashPool(hasher, c.HashConcurrency)
	codec := auth.NewJWTCodec([]byte(c.SecretKey))

	as, err := services.NewAuthService(repos.Users(), pool, codec, c.AccessTokenValidityDuration, logger.With("module", "auth_service"))
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	sr := services.NewSessionResolver(repos.Users(), codec, logger.With("module", "session_resolver"))

	return &App{config: c, logger: logger, repos: repos, auth: as, sessions: sr}, nil
}

// Run serves HTTP and gRPC until ctx is canceled, SIGINT or SIGTERM arrives,
// or either server fails. The store is closed on the way out.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	if app.config.HTTPAddr != "" {
		if app.config.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := httpapi.NewRouter(app.auth, app.sessions, app.logger.With("module", "http"))
		s := httpapi.NewServer(app.config.HTTPAddr, router, app.logger)
		g.Go(func() error { return s.Run(ctx) })
	}

	if app.config.GRPCAddr != "" {
		s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.auth, app.sessions)
		g.Go(func() error { return s.Run(ctx) })
	}

	err := g.Wait()

	if cerr := app.repos.Close(); cerr != nil {
		app.logger.Error(ctx, "error closing store", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
