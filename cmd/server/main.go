package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chirphq/chirp/config"
	"github.com/chirphq/chirp/internal/email"
	"github.com/chirphq/chirp/internal/health"
	"github.com/chirphq/chirp/internal/infrastructure/postgres"
	"github.com/chirphq/chirp/internal/janitor"
	ctxlog "github.com/chirphq/chirp/internal/log"
	"github.com/chirphq/chirp/internal/metrics"
	httptransport "github.com/chirphq/chirp/internal/transport/http"
	"github.com/chirphq/chirp/internal/transport/http/handler"
	"github.com/chirphq/chirp/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	otpRepo := postgres.NewOTPRepository(pool)
	verificationRepo := postgres.NewVerificationRepository(pool)

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	jwtKey := []byte(cfg.JWTSecret)
	otpUsecase := usecase.NewOTPUsecase(otpRepo, verificationRepo, jwtKey, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, otpUsecase, sender, jwtKey, logger)

	authHandler := handler.NewAuthHandler(authUsecase, handler.CookieConfig{
		Domain: cfg.CookieDomain,
		Secure: cfg.Env != "local",
		MaxAge: int((15 * 24 * time.Hour).Seconds()),
	}, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	sweeper, err := janitor.New(otpRepo, verificationRepo, cfg.SweepCron, logger)
	if err != nil {
		stop()
		log.Fatalf("janitor: %v", err)
	}
	go sweeper.Start(ctx)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, userRepo, jwtKey),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
