package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"geoattend/internal/account"
	"geoattend/internal/attendance"
	"geoattend/internal/auth"
	"geoattend/internal/config"
	"geoattend/internal/face"
	"geoattend/internal/handler"
	"geoattend/internal/httpmiddleware"
	"geoattend/internal/metrics"
	"geoattend/internal/room"
	"geoattend/internal/store"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file merged into the environment")
	migrateOnly := pflag.Bool("migrate-only", false, "apply database migrations and exit")
	pflag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Load()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger, *migrateOnly); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.App) *slog.Logger {
	if cfg.Production() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type stores struct {
	rooms    room.Store
	ledger   attendance.Ledger
	accounts account.Store
}

func run(cfg config.App, logger *slog.Logger, migrateOnly bool) error {
	ctx := context.Background()
	health := map[string]handler.HealthCheck{}

	var st stores
	switch cfg.StorageBackend {
	case "memory":
		if migrateOnly {
			return errors.New("--migrate-only needs STORAGE_BACKEND=postgres")
		}
		logger.Warn("using in-memory storage; data is lost on restart")
		st = stores{
			rooms:    room.NewMemoryStore(),
			ledger:   attendance.NewMemoryLedger(),
			accounts: account.NewMemoryStore(),
		}
	default:
		db, err := store.NewDB(ctx, cfg.DatabaseURL)
		if db == nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err != nil {
			logger.Warn("database not reachable", "err", err)
		}
		if cfg.MigrateOnStart || migrateOnly {
			if err := db.Migrate(ctx); err != nil {
				return err
			}
			logger.Info("migrations applied")
		}
		if migrateOnly {
			return nil
		}
		st = stores{
			rooms:    room.NewRepository(db.Client),
			ledger:   attendance.NewRepository(db.Client),
			accounts: account.NewRepository(db.Client),
		}
		health["db"] = db.Healthy
	}

	var limiter httpmiddleware.Limiter
	switch cfg.RateLimitBackend {
	case "memory":
		limiter = httpmiddleware.NewMemoryLimiter(cfg.AttendanceLimit, cfg.AttendanceWindow)
	default:
		redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisPass)
		defer redisClient.Close()
		redisLimiter, err := httpmiddleware.NewRedisLimiter(redisClient.Client, "ratelimit:mark-attendance", cfg.AttendanceLimit, cfg.AttendanceWindow)
		if err != nil {
			return fmt.Errorf("rate limiter (redis %s): %w", cfg.RedisAddr, err)
		}
		limiter = redisLimiter
		health["redis"] = redisClient.Healthy
	}

	rooms := room.NewService(st.rooms)
	accounts := account.NewService(st.accounts, face.NewMatcher(cfg.FaceMatchThreshold))
	if cfg.AdminEmail != "" {
		if err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("provision admin: %w", err)
		}
		logger.Info("admin provisioned", "email", cfg.AdminEmail)
	}

	h := handler.New(handler.Deps{
		Rooms:      rooms,
		Attendance: attendance.NewService(rooms, st.ledger),
		Accounts:   accounts,
		Sessions: auth.NewGateway(auth.Options{
			SessionSecret: cfg.SessionSecret,
			SessionMaxAge: cfg.SessionMaxAge,
			CookieSecure:  cfg.CookieSecure,
			SigningKey:    cfg.JWTSigningKey,
			Issuer:        cfg.JWTIssuer,
			AccessTTL:     cfg.AccessTTL,
			Accounts:      accounts,
		}),
		Limiter: limiter,
		Metrics: metrics.New(prometheus.DefaultRegisterer),
		Logger:  logger,
		Health:  health,
	})
	r, err := h.Router(handler.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
		RequestLog:     !cfg.Production(),
	})
	if err != nil {
		return fmt.Errorf("configure router: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.HTTPPort, "storage", cfg.StorageBackend, "rate_limit", cfg.RateLimitBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced shutdown", "err", err)
	}
	logger.Info("server exited")
	return nil
}
