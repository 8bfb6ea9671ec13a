package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stockpos/backend/internal/cache"
	"stockpos/backend/internal/config"
	"stockpos/backend/internal/httpapi"
	"stockpos/backend/internal/logger"
	"stockpos/backend/internal/service"
	"stockpos/backend/internal/store"
	"stockpos/backend/internal/store/memory"
	pgstore "stockpos/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogFormat, cfg.LogLevel)
	log := logger.Log

	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid security configuration")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL, cfg.MaxConcurrentTx)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Info().Msg("repository: postgres")
	} else {
		repo = memory.NewSeeded()
		log.Info().Msg("repository: in-memory")
	}

	var reportCache cache.ReportCache = cache.NewNoop()
	if cfg.CacheEnabled() {
		redisCache, err := cache.NewRedisReportCache(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using noop report cache")
		} else {
			reportCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Info().Msg("cache: redis")
		}
	} else {
		log.Info().Msg("cache: noop")
	}

	svc := service.New(repo, reportCache, cfg.Location(), cfg.ReportCacheTTL())
	if err := svc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin")
	}
	auth := httpapi.NewAuthManager(cfg.AuthSecret, cfg.AccessTokenTTL())
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Msg("stockpos backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("SECRET_KEY must be set and at least 32 characters")
	}
	if cfg.AdminEmail != "" {
		if err := validateAdminPassword(cfg.AdminPassword); err != nil {
			return fmt.Errorf("ADMIN_PASSWORD is too weak: %w", err)
		}
	}
	return nil
}

// validateAdminPassword rejects short passwords, single repeated
// characters and a handful of well-known defaults.
func validateAdminPassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("at least 8 characters required")
	}
	known := map[string]bool{
		"password": true, "12345678": true, "123456789": true,
		"admin123": true, "administrator": true, "qwertyui": true,
		"changeme": true, "password1": true, "letmein1": true,
	}
	if known[strings.ToLower(password)] {
		return fmt.Errorf("common password not allowed")
	}

	allSame := true
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("repeated-character password not allowed")
	}
	return nil
}
