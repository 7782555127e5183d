package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sakif/devhub/internal/server"
)

type config struct {
	Port               int           `envconfig:"PORT" default:"8080"`
	DBPath             string        `envconfig:"DB_PATH" default:"devhub.db"`
	JWTSecret          string        `envconfig:"JWT_SECRET" required:"true"`
	GitHubClientID     string        `envconfig:"GITHUB_CLIENT_ID" required:"true"`
	GitHubClientSecret string        `envconfig:"GITHUB_CLIENT_SECRET" required:"true"`
	GitHubCallbackURL  string        `envconfig:"GITHUB_CALLBACK_URL" default:"http://localhost:8080/auth/github/callback"`
	SyncTimeout        time.Duration `envconfig:"SYNC_TIMEOUT" default:"2m"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// .env is a local-dev convenience; absence is fine in production.
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(server.Config{
		Port:               cfg.Port,
		DBPath:             cfg.DBPath,
		JWTSecret:          cfg.JWTSecret,
		GitHubClientID:     cfg.GitHubClientID,
		GitHubClientSecret: cfg.GitHubClientSecret,
		GitHubCallbackURL:  cfg.GitHubCallbackURL,
		SyncTimeout:        cfg.SyncTimeout,
	}, logger)
	if err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("signal received", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}
