package cli

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aretw0/firebreak/internal/config"
	"github.com/aretw0/firebreak/internal/logging"
	"github.com/aretw0/firebreak/pkg/domain"
)

// createLogger configures the application logger.
// It writes to Stderr to keep the interview on Stdout readable.
func createLogger(debug bool) *slog.Logger {
	return logging.New(logging.Level(debug))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			logger.Debug("Enter Stage", "run_id", e.RunID, "stage", e.Stage, "visit", e.Visit)
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			if e.Err != nil {
				logger.Debug("Leave Stage (Error)", "run_id", e.RunID, "stage", e.Stage, "err", e.Err)
				return
			}
			logger.Debug("Leave Stage", "run_id", e.RunID, "stage", e.Stage, "duration", e.Duration)
		},
		OnRoute: func(ctx context.Context, e *domain.RouteEvent) {
			logger.Debug("Route", "run_id", e.RunID, "from", e.From, "to", e.To, "fallback", e.Fallback)
		},
	}
}

// Flags carries the command-line values shared by every command.
type Flags struct {
	ConfigPath string
	Offline    bool
	Debug      bool
	Store      string

	// MaxVisits overrides the configured cap when >= 0.
	MaxVisits int

	// StoreOnly skips the provider check for commands that never call a model.
	StoreOnly bool
}

func (f Flags) overrides() map[string]string {
	o := map[string]string{}
	if f.Offline {
		o["provider"] = config.ProviderOffline
	}
	if f.Debug {
		o["debug"] = "true"
	}
	if f.Store != "" {
		o["store.kind"] = f.Store
	}
	if f.MaxVisits >= 0 {
		o["max_visits"] = strconv.Itoa(f.MaxVisits)
	}
	return o
}

// LoadConfig reads the configuration with f applied on top.
func LoadConfig(f Flags) (*config.Config, error) {
	if f.StoreOnly {
		return config.LoadStoreOnly(f.ConfigPath, f.overrides())
	}
	return config.LoadWithOverrides(f.ConfigPath, f.overrides())
}

// OpenApp loads the configuration and opens the app it describes.
func OpenApp(f Flags) (*App, error) {
	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, err
	}
	return Open(cfg, createLogger(cfg.Debug))
}
