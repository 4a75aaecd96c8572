package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/embracingthegirlchild/site/internal/app"
	"github.com/embracingthegirlchild/site/internal/config"
	"github.com/embracingthegirlchild/site/internal/pkg/nativelog"
	"github.com/embracingthegirlchild/site/internal/pkg/telemetry"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML or TOML config file (default "+config.DefaultConfigPath+")")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger, err := nativelog.NewZapLogger(cfg.LogsDir(), "server", cfg.IsDev())
	if err != nil {
		logger, _ = zap.NewProduction()
		logger.Warn("file log unavailable, falling back to stderr", zap.Error(err))
	}
	defer logger.Sync()

	shutdownTracing, err := telemetry.Init(context.Background(), telemetry.Options{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	application, err := app.New(logger, cfg)
	if err != nil {
		logger.Fatal("failed to initialize app", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              application.Addr(),
		Handler:           application.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	application.Shutdown()
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("flush traces", zap.Error(err))
	}
	logger.Info("server exited")
}
