package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/flightrelay/internal/adapters/http"
	"github.com/dkeye/flightrelay/internal/app"
	"github.com/dkeye/flightrelay/internal/app/authz"
	"github.com/dkeye/flightrelay/internal/app/orch"
	"github.com/dkeye/flightrelay/internal/config"
	"github.com/dkeye/flightrelay/internal/logging"
	"github.com/dkeye/flightrelay/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Console logger until the config says otherwise.
	logging.Setup("info", "")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	closer := logging.Setup(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Store.Driver).Msg("session store unavailable, keeping sessions in memory")
		st = store.NewMemoryStore()
	}
	defer st.Close()

	reg := app.NewRegistry(st)
	if err := reg.Load(ctx); err != nil {
		log.Error().Err(err).Msg("failed to restore sessions")
	}

	var limiter *authz.AttemptLimiter
	if cfg.Auth.AttemptLimit > 0 {
		limiter = authz.NewAttemptLimiter(cfg.Auth.AttemptLimit, cfg.Auth.AttemptWindow)
	}
	gate := authz.NewGate(reg, authz.NewClassifier(cfg.Auth.PrivilegedCommands...), limiter)
	o := orch.New(reg, gate, app.SimplePolicy{})

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Int("sessions", reg.Count()).Msg("relay server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rs := store.NewRedisStore(client, cfg.RedisKey)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			rs.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return rs, nil
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.NewFileStore(cfg.Path)
	}
}
