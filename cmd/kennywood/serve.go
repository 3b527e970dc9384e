package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/kennywood-api/internal/config"
	"github.com/deppfellow/kennywood-api/internal/handler"
	"github.com/deppfellow/kennywood-api/internal/lib/email"
	"github.com/deppfellow/kennywood-api/internal/logger"
	"github.com/deppfellow/kennywood-api/internal/repository"
	"github.com/deppfellow/kennywood-api/internal/router"
	"github.com/deppfellow/kennywood-api/internal/server"
	"github.com/deppfellow/kennywood-api/internal/service"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		return abort(srv, &log, fmt.Errorf("failed to create services: %w", err))
	}

	srv.Job.InitHandlers(repos.Itinerary, repos.Customer, email.NewClient(cfg, &log))
	if err := srv.Job.Start(); err != nil {
		return abort(srv, &log, fmt.Errorf("failed to start job server: %w", err))
	}

	handlers := handler.NewHandlers(srv, services)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, srv, &log)
}

// lifecycle is the part of server.Server that serve drives.
type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// run serves until ctx is done or the listener fails, then shuts app down.
// A listener failure is returned together with any shutdown error.
func run(ctx context.Context, app lifecycle, log *zerolog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := app.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var startErr error
	select {
	case startErr = <-serveErr:
		if startErr != nil {
			log.Error().Err(startErr).Msg("server stopped unexpectedly")
			startErr = fmt.Errorf("http server: %w", startErr)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	if err := shutdown(app, log); err != nil {
		return errors.Join(startErr, err)
	}
	if startErr != nil {
		return startErr
	}

	log.Info().Msg("server exited properly")
	return nil
}

// abort releases whatever app already holds and returns cause.
func abort(app lifecycle, log *zerolog.Logger, cause error) error {
	return errors.Join(cause, shutdown(app, log))
}

func shutdown(app lifecycle, log *zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}
	return nil
}
