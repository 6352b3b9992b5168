// Command labstub runs the development stand-in for the remote MediSage
// service so the client can be exercised without the production backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medisage/medisage-client/internal/labstub"
	"github.com/medisage/medisage-client/internal/pkg/config"
	"github.com/medisage/medisage-client/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
		Output: os.Stdout,
	})

	var guard labstub.UploadGuard = labstub.NewMemoryGuard()
	if cfg.Stub.RedisAddr != "" {
		client, err := labstub.ConnectRedis(ctx, cfg.Stub.RedisAddr, cfg.Stub.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Stub.RedisAddr).Msg("redis connection failed")
		}
		defer client.Close()
		guard = labstub.NewRedisGuard(client)
		log.Info().Str("addr", cfg.Stub.RedisAddr).Msg("upload guard backed by redis")
	}

	server := labstub.NewServer(labstub.NewMemStore(), guard, log)
	e := server.Router()

	go func() {
		log.Info().Str("port", cfg.Stub.Port).Msg("labstub listening")
		if err := e.Start(":" + cfg.Stub.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
