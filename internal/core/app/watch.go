package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"pylens/internal/core/watcher"
)

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	a.activeWatcher = w
	return w.Watch([]string{a.Config.Paths.ProjectRoot})
}

// HandleChanges re-runs project analysis after a debounced batch of file
// changes. The limiter drops batches arriving faster than the configured
// rate so editor churn cannot pile up full re-analyses.
func (a *App) HandleChanges(paths []string) {
	if !a.watchLimiter.Allow(1) {
		slog.Debug("watch update rate limited", "changed", len(paths))
		return
	}

	changed := make([]string, 0, len(paths))
	for _, path := range paths {
		rel := a.relPath(path)
		changed = append(changed, rel)
		a.Engine.Forget(rel)
	}

	report, err := a.AnalyzeProjectTree(context.Background())
	if err != nil {
		slog.Error("watch re-analysis failed", "error", err)
		return
	}

	a.publishUpdate(Update{
		RunID:          report.RunID,
		FileCount:      report.FileCount,
		FunctionCount:  report.FunctionCount,
		CallCount:      report.CallCount,
		CrossFileCount: report.CrossFileCount,
		DeadCount:      report.DeadCount,
		ChangedPaths:   changed,
	})
}

// relPath maps a watcher event path back to the root-relative slash path
// the engine keys its per-file state by.
func (a *App) relPath(path string) string {
	rel, err := filepath.Rel(a.Config.Paths.ProjectRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
