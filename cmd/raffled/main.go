package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nftraffle/internal/api"
	"nftraffle/internal/config"
	"nftraffle/internal/logger"
	"nftraffle/internal/metadata"
	"nftraffle/internal/raffle"
	"nftraffle/internal/service"
	"nftraffle/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Initialize(cfg.Log)
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Fatal("raffled: RAFFLE_JWT_SECRET is required")
	}

	server, closer, err := build(cfg)
	if err != nil {
		logger.Fatal("raffled: initialization failed", zap.Error(err))
	}
	defer closer()

	errCh := make(chan error, 1)

	go func() {
		logger.Info("raffled: listening", zap.String("address", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("raffled: server stopped", zap.Error(err))
	case <-waitForInterrupt():
		logger.Info("raffled: interrupt received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("raffled: shutdown failed", zap.Error(err))
	}
	logger.Info("raffled: stopped")
}

func build(cfg *config.Config) (*http.Server, func(), error) {
	program, err := cfg.Program()
	if err != nil {
		return nil, nil, err
	}
	treasury, err := cfg.Treasury()
	if err != nil {
		return nil, nil, err
	}
	randomness, err := raffle.NewRandomnessSource(cfg.Randomness)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewSqliteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := store.Close(); err != nil {
			logger.Error("raffled: close database", zap.Error(err))
		}
	}

	source, err := metadata.NewSource(cfg.MetadataSource, store, cfg.Tonapi)
	if err != nil {
		closer()
		return nil, nil, err
	}

	machine := raffle.NewMachine(store, source,
		raffle.WithProgram(program),
		raffle.WithTreasury(treasury),
		raffle.WithRandomness(randomness),
	)
	handler := api.NewHandler(service.New(store, machine), []byte(cfg.JWTSecret))

	logger.Debug("raffled: configured",
		zap.String("program", program.ToRaw()),
		zap.String("treasury", treasury.ToRaw()),
		zap.String("randomness", cfg.Randomness),
		zap.String("metadata", cfg.MetadataSource),
	)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handler, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}, closer, nil
}

func waitForInterrupt() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh
}
