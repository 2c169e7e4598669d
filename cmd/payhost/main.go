package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/payhost/internal/config"
	"github.com/deppfellow/payhost/internal/handler"
	"github.com/deppfellow/payhost/internal/logger"
	"github.com/deppfellow/payhost/internal/middleware"
	"github.com/deppfellow/payhost/internal/router"
	"github.com/deppfellow/payhost/internal/server"
	"github.com/deppfellow/payhost/internal/service"
	"github.com/rs/zerolog"
)

const DefaultContextTimeout = 30

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize New Relic logger service
	loggerService := logger.NewLoggerService(cfg.Observability)

	log, err := logger.NewLoggerWithService(cfg.Observability, loggerService)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("failed to initialize logger")
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	services, err := service.NewServices(srv)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	middlewares := middleware.NewMiddlewares(srv, services)
	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(handlers, middlewares)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
