package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/firebreak"
	"github.com/aretw0/firebreak/internal/bushfire"
	"github.com/aretw0/firebreak/internal/config"
	"github.com/aretw0/firebreak/internal/metrics"
	"github.com/aretw0/firebreak/pkg/adapters/file"
	"github.com/aretw0/firebreak/pkg/adapters/gemini"
	"github.com/aretw0/firebreak/pkg/adapters/memory"
	"github.com/aretw0/firebreak/pkg/adapters/openai"
	"github.com/aretw0/firebreak/pkg/adapters/redis"
	"github.com/aretw0/firebreak/pkg/adapters/sqlite"
	"github.com/aretw0/firebreak/pkg/inference"
	"github.com/aretw0/firebreak/pkg/middleware"
	"github.com/aretw0/firebreak/pkg/ports"
	"github.com/aretw0/firebreak/pkg/session"
	"github.com/aretw0/firebreak/pkg/stages"
)

// App holds the collaborators shared by every command.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   ports.CheckpointStore
	Manager *session.Manager
	Metrics *metrics.Collectors

	closers []io.Closer
}

// Open builds the store, middleware and session manager described by cfg.
func Open(cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(true),
	}

	store, locker, err := app.openStore()
	if err != nil {
		return nil, err
	}

	if cfg.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		store = middleware.Chain(store, mw)
	}
	app.Store = store

	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	app.Manager = session.NewManager(store, opts...)
	return app, nil
}

func (a *App) openStore() (ports.CheckpointStore, ports.DistributedLocker, error) {
	cfg := a.Config
	switch cfg.Store.Kind {
	case config.StoreMemory:
		return memory.NewStore(), nil, nil
	case config.StoreRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithTTL(cfg.Redis.TTL))
		a.closers = append(a.closers, store)
		return store, redis.NewLocker(store.Client(), redis.DefaultPrefix), nil
	case config.StoreSQLite:
		store, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.closers = append(a.closers, store)
		return store, nil, nil
	default:
		return file.New(cfg.Store.Path), nil, nil
	}
}

// Inspection returns the store as seen by read-only surfaces, with answers
// matching the configured patterns masked.
func (a *App) Inspection() (ports.CheckpointStore, error) {
	if len(a.Config.RedactPatterns) == 0 {
		return a.Store, nil
	}
	mw, err := middleware.NewRedactMiddleware(a.Config.RedactPatterns)
	if err != nil {
		return nil, err
	}
	return middleware.Chain(a.Store, mw), nil
}

// Inferer builds the configured inference backend behind a Guard.
func (a *App) Inferer(ctx context.Context) (ports.Inferer, error) {
	cfg := a.Config
	var backend inference.Inferer

	switch cfg.Provider {
	case config.ProviderAzure:
		c := openai.AzureConfig(cfg.Inference.Endpoint, cfg.Inference.Model, cfg.Inference.APIKey, cfg.Inference.APIVersion)
		c.Logger = a.Logger
		client, err := openai.New(c)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure client: %w", err)
		}
		backend = client
	case config.ProviderOpenAI:
		c := openai.DefaultConfig(cfg.Inference.APIKey)
		if cfg.Inference.Model != "" {
			c.Model = cfg.Inference.Model
		}
		c.Logger = a.Logger
		client, err := openai.New(c)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		backend = client
	case config.ProviderGemini:
		client, err := gemini.New(ctx, gemini.Config{
			APIKey: cfg.Inference.APIKey,
			Model:  cfg.Inference.Model,
			Logger: a.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		backend = client
	case config.ProviderOffline:
		backend = bushfire.Offline()
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	return inference.NewGuard(backend,
		inference.WithTimeout(cfg.Inference.Timeout),
		inference.WithLogger(a.Logger),
	), nil
}

// Planner wires the planning graph to the app's store.
func (a *App) Planner(ctx context.Context, prompter ports.Prompter, notifier stages.Notifier) (*firebreak.Planner, error) {
	inferer, err := a.Inferer(ctx)
	if err != nil {
		return nil, err
	}
	return firebreak.New(a.Store, inferer, prompter,
		firebreak.WithNotifier(notifier),
		firebreak.WithLogger(a.Logger),
		firebreak.WithMaxVisits(a.Config.MaxVisits),
		firebreak.WithLifecycleHooks(metrics.Combine(createDebugHooks(a.Logger), a.Metrics.Hooks())),
	)
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
