package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/strawberry-chess/internal/chess/uci"
	appcfg "github.com/park285/strawberry-chess/internal/config"
	"github.com/park285/strawberry-chess/internal/obslog"
	"github.com/park285/strawberry-chess/internal/uciws"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("log init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	srv := uciws.NewServer(uciws.Config{
		MaxSessions: cfg.WSMaxSessions,
		Logger:      logger,
		Engine: uci.Config{
			Name:         cfg.EngineName,
			Author:       cfg.EngineAuthor,
			DefaultDepth: cfg.DefaultDepth,
			Seed:         cfg.Seed,
		},
	})

	mux := http.NewServeMux()
	mux.Handle("/uci", srv)
	httpSrv := &http.Server{Addr: cfg.WSAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logger.Info("ws_listen", zap.String("addr", cfg.WSAddr), zap.Int("max_sessions", cfg.WSMaxSessions))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ws_listen_failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("ws_shutdown_incomplete", zap.Error(err), zap.Int("active", srv.Active()))
	}
}
