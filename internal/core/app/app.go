package app

import (
	"context"
	"log/slog"
	"sync"

	"pylens/internal/core/config"
	"pylens/internal/core/errors"
	"pylens/internal/core/watcher"
	"pylens/internal/data/history"
	"pylens/internal/engine/analysis"
	"pylens/internal/shared/util"
)

// App wires the analysis engine, history store, and watcher behind one
// object. All request-serving methods live on App; cmd and the TUI only
// talk to it.
type App struct {
	Config  *config.Config
	Engine  *analysis.Engine
	History *history.Store

	activeWatcher *watcher.Watcher
	watchLimiter  *util.Limiter

	updateMu      sync.Mutex
	updateHandler func(Update)
	lastUpdate    Update
}

// Update is the payload pushed to watch-mode subscribers after each
// re-analysis.
type Update struct {
	RunID          string
	FileCount      int
	FunctionCount  int
	CallCount      int
	CrossFileCount int
	DeadCount      int
	ChangedPaths   []string
}

func New(cfg *config.Config) (*App, error) {
	engine, err := analysis.NewEngine(analysis.Options{
		CacheTTL:    cfg.Engine.CacheTimeout(),
		MaxFileSize: cfg.Engine.MaxFileSize,
		ParseBudget: cfg.Engine.ParseBudget(),
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:       cfg,
		Engine:       engine,
		watchLimiter: util.NewLimiter(cfg.Watch.Rate, cfg.Watch.Burst),
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnavailable, "open history store")
		}
		a.History = store
	}

	return a, nil
}

func (a *App) Close(ctx context.Context) error {
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
		a.activeWatcher = nil
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			return err
		}
		a.History = nil
	}
	return nil
}

// SetUpdateHandler registers the watch-mode subscriber. Only one handler is
// active at a time.
func (a *App) SetUpdateHandler(handler func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.updateHandler = handler
}

// CurrentUpdate returns the most recent watch-mode result.
func (a *App) CurrentUpdate() Update {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	return a.lastUpdate
}

func (a *App) publishUpdate(update Update) {
	a.updateMu.Lock()
	a.lastUpdate = update
	handler := a.updateHandler
	a.updateMu.Unlock()
	if handler != nil {
		handler(update)
	}
}
