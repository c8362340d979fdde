package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/corsgate/corsgate/pkg/config"
	"github.com/corsgate/corsgate/pkg/cors"
	handlers "github.com/corsgate/corsgate/pkg/handlers/http"
	infraLogger "github.com/corsgate/corsgate/pkg/infra/logger"
	"github.com/corsgate/corsgate/pkg/middleware"
	"github.com/corsgate/corsgate/pkg/server"
	"github.com/corsgate/corsgate/pkg/server/router"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}
	cfg := config.GetConfig()

	policy, err := cors.NewPolicy(cfg.CORS)
	if err != nil {
		logger.WithError(err).Fatal("invalid cors configuration")
	}

	middlewareTransport := &middleware.Transport{
		TraceMiddleware:   middleware.NewTraceMiddleware(),
		MetricsMiddleware: middleware.NewMetricsMiddleware(logger),
		CORSMiddleware:    middleware.NewCORSMiddleware(policy, logger),
	}

	handlerTransport := &handlers.HandlerTransport{
		HealthHandler:    handlers.NewHealthHandler(logger),
		VersionHandler:   handlers.NewVersionHandler(logger),
		FaultHandler:     handlers.NewFaultHandler(logger),
		HTTPFaultHandler: handlers.NewHTTPFaultHandler(logger),
	}

	srv := server.NewBaseServer(cfg, logger).
		WithRouters(router.NewAppRouter(middlewareTransport, handlerTransport))

	group, ctx := errgroup.WithContext(context.Background())

	group.Go(func() error {
		return srv.Run()
	})

	group.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
			logger.Info("shutdown signal received")
			return srv.Shutdown()
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("server stopped")
	}
}
