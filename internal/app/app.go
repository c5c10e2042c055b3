package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/debt-ledger-service/internal/config"
	"github.com/sandeepkv93/debt-ledger-service/internal/database"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
)

// Drainer waits for background work started by request handlers.
type Drainer interface {
	Drain(ctx context.Context) error
}

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	Dispatcher    Drainer
	DB            *gorm.DB
	Redis         redis.UniversalClient
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	dispatcher Drainer,
	db *gorm.DB,
	redisClient redis.UniversalClient,
) *App {
	return &App{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		Observability: runtime,
		Dispatcher:    dispatcher,
		DB:            db,
		Redis:         redisClient,
	}
}

// Run serves until ctx is cancelled, then shuts down in stages.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server starting", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			a.Shutdown(context.Background())
			return err
		}
	case <-ctx.Done():
	}
	a.Logger.Info("shutdown signal received")
	a.Shutdown(context.Background())
	return nil
}

// Shutdown drains HTTP, then pending emails, then flushes telemetry and
// finally closes Redis and the database. Every stage runs even if an
// earlier one failed.
func (a *App) Shutdown(parent context.Context) {
	total := durationOr(a.Config.ShutdownTimeout, 20*time.Second)
	totalCtx, cancel := context.WithTimeout(parent, total)
	defer cancel()

	a.stage(totalCtx, "http", durationOr(a.Config.ShutdownHTTPDrainTimeout, 10*time.Second), func(ctx context.Context) error {
		if a.Server == nil {
			return nil
		}
		return a.Server.Shutdown(ctx)
	})
	a.stage(totalCtx, "mail", durationOr(a.Config.ShutdownMailDrainTimeout, 5*time.Second), func(ctx context.Context) error {
		if a.Dispatcher == nil {
			return nil
		}
		return a.Dispatcher.Drain(ctx)
	})
	a.stage(totalCtx, "observability", durationOr(a.Config.ShutdownObservabilityTimeout, 8*time.Second), func(ctx context.Context) error {
		return a.Observability.Shutdown(ctx)
	})

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("failed to close redis client", "error", err)
		}
	}
	if err := database.Close(a.DB); err != nil {
		a.Logger.Error("failed to close database connection", "error", err)
	}
	a.Logger.Info("shutdown complete")
}

func (a *App) stage(parent context.Context, name string, timeout time.Duration, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	start := time.Now()
	if err := fn(ctx); err != nil {
		a.Logger.Error("shutdown stage failed", "stage", name, "error", err, "elapsed", time.Since(start))
		return
	}
	a.Logger.Info("shutdown stage complete", "stage", name, "elapsed", time.Since(start))
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
