package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/deptce/mentorship/internal/bootstrap"
	"github.com/deptce/mentorship/internal/config"
	"github.com/deptce/mentorship/internal/db"
	"github.com/deptce/mentorship/internal/pkg/helpers"
)

// TokenPurger removes deny-list entries for tokens that expired on their own
type TokenPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Server holds the state for the HTTP server.
type Server struct {
	config  *config.Config
	handler http.Handler
	pg      *db.PostgresDB
	mongo   *db.MongoDB
	deps    *bootstrap.Dependencies
	logger  zerolog.Logger
	http    *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(ctx context.Context) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	pg, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	mongoDB, err := bootstrap.SetupDocumentStore(ctx, cfg, lgr)
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("failed to setup document store: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, pg, mongoDB, lgr)
	if err != nil {
		pg.Close()
		_ = mongoDB.Close(ctx)
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router := bootstrap.SetupRouter(cfg, deps, lgr)

	return &Server{
		config:  cfg,
		handler: bootstrap.WithCORS(cfg, router),
		pg:      pg,
		mongo:   mongoDB,
		deps:    deps,
		logger:  lgr,
	}, nil
}

// Run starts the HTTP server and background workers, and blocks until a
// shutdown signal or a server error.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	go s.deps.Hub.Run(workerCtx)
	go PurgeRevokedTokens(workerCtx, s.deps.Repos.TokenRepository,
		helpers.ParseDuration(s.config.Server.TokenPurge, time.Hour), s.logger)

	s.http = &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			stopWorkers()
			_ = s.Shutdown(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	stopWorkers()
	return s.Shutdown(context.Background())
}

// PurgeRevokedTokens deletes expired deny-list entries every interval until
// ctx is done
func PurgeRevokedTokens(ctx context.Context, tokens TokenPurger, interval time.Duration, lgr zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := tokens.PurgeExpired(ctx, now)
			if err != nil {
				lgr.Warn().Err(err).Msg("Failed to purge revoked tokens")
				continue
			}
			if n > 0 {
				lgr.Debug().Int64("purged", n).Msg("Purged expired revoked tokens")
			}
		}
	}
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			errs = append(errs, err)
		}
	}

	if s.deps != nil && s.deps.Kafka != nil {
		if err := s.deps.Kafka.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Kafka producer close error")
			errs = append(errs, err)
		}
	}

	if err := s.mongo.Close(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Document store disconnect error")
		errs = append(errs, err)
	}

	if s.pg != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.pg.Close()
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	if len(errs) > 0 {
		return fmt.Errorf("server shutdown completed with errors: %w", errors.Join(errs...))
	}
	return nil
}
