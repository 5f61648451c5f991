package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/strawberry-chess/internal/chess/uci"
	appcfg "github.com/park285/strawberry-chess/internal/config"
	"github.com/park285/strawberry-chess/internal/obslog"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("log init error: %v", err)
	}
	logger := obslog.L().With(zap.String("session_id", uuid.NewString()))
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := uci.NewHandler(uci.Config{
		Name:         cfg.EngineName,
		Author:       cfg.EngineAuthor,
		DefaultDepth: cfg.DefaultDepth,
		Seed:         cfg.Seed,
		Logger:       logger,
	})

	logger.Info("engine_start", zap.String("name", cfg.EngineName), zap.Int("default_depth", cfg.DefaultDepth))
	if err := handler.Run(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("engine_stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("engine_quit")
}
