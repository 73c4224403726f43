package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aliumairdev/saaskit/db/migrations"
	"github.com/aliumairdev/saaskit/internal/config"
	"github.com/aliumairdev/saaskit/internal/jobs"
	"github.com/aliumairdev/saaskit/internal/observability/logging"
	"github.com/aliumairdev/saaskit/internal/observability/metrics"
	impl "github.com/aliumairdev/saaskit/internal/service/impl"
	"github.com/aliumairdev/saaskit/internal/store"
	httpx "github.com/aliumairdev/saaskit/internal/transport/http"
	"github.com/aliumairdev/saaskit/pkg/db"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	metrics.MustRegister(cfg.ServiceName)

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, DisableFK: true})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Error("sql db", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Error("goose dialect", "error", err)
		os.Exit(1)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		logger.Error("migrations", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)

	passwords := impl.NewPasswordServiceArgon2id()
	sessions := impl.NewSessionServiceHS256(impl.SessionConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		SessionTTL: cfg.SessionTTL,
		PendingTTL: cfg.PendingTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	twoFactor := impl.NewTwoFactorServiceImpl(st, cfg.Issuer)
	auth := impl.NewAuthServiceImpl(st, passwords, sessions, twoFactor)
	accounts := impl.NewAccountServiceImpl(st, cfg.TrialPeriod)
	invitations := impl.NewInvitationServiceImpl(st)
	apiTokens := impl.NewAPITokenServiceImpl(st)
	oauth := impl.NewOAuthServiceImpl(st, passwords)

	handler := &httpx.Handler{
		Auth:        auth,
		Accounts:    accounts,
		Invitations: invitations,
		APITokens:   apiTokens,
		TwoFactor:   twoFactor,
		OAuth:       oauth,
		Sessions:    sessions,
		Store:       st,
		TrustProxy:  cfg.TrustProxy,
	}

	router := httpx.NewRouter(handler, httpx.RouterConfig{
		CORSOrigins: splitOrigins(os.Getenv("CORS_ORIGINS")),
		TrustProxy:  cfg.TrustProxy,
	})

	trials := jobs.NewTrialChecker(st, jobs.NoopTrialNotifier{}, cfg.TrialCheckInterval)
	go trials.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", srv.Addr, "issuer", cfg.Issuer)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func splitOrigins(raw string) []string {
	out := []string{}
	for _, o := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	return out
}
