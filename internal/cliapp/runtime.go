package cliapp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	coreapp "pylens/internal/core/app"
	"pylens/internal/core/config"
	"pylens/internal/shared/observability"
	"pylens/internal/ui/cli"
	"pylens/internal/ui/report"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("pylens v%s\n", versionString)
		return 0
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose)
	defer cleanupLogs()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	ctx := context.Background()

	var shutdownTracing func(context.Context) error
	if cfg.Observability.Enabled {
		shutdownTracing, err = observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracing(shutdownCtx)
			}()
		}
	}

	app, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer func() { _ = app.Close(ctx) }()

	if stop, code := runSingleCommand(ctx, app, opts); stop {
		return code
	}

	projectReport, err := app.AnalyzeProjectTree(ctx)
	if err != nil {
		slog.Error("project analysis failed", "error", err)
		return 1
	}

	if !opts.ui {
		if opts.jsonOut {
			data, err := report.RenderJSON(projectReport)
			if err != nil {
				slog.Error("failed to encode report", "error", err)
				return 1
			}
			fmt.Println(string(data))
		} else {
			fmt.Print(report.RenderSummary(projectReport))
		}
	}

	if opts.once {
		return 0
	}

	if cfg.Observability.Enabled {
		srv := cli.NewObservabilityServer(cfg.Observability.Address, coreapp.NewHealthService(app))
		if err := srv.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() { _ = srv.Stop(ctx) }()
	}

	if err := app.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	if opts.ui {
		if err := runUI(app, projectReport); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	select {}
}

func runSingleCommand(ctx context.Context, app *coreapp.App, opts cliOptions) (bool, int) {
	if opts.trend {
		points, err := app.CaptureTrend(ctx, time.Time{})
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return true, 1
		}
		if opts.jsonOut {
			data, err := report.RenderJSON(points)
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				return true, 1
			}
			fmt.Println(string(data))
		} else {
			fmt.Print(report.RenderTrend(points))
		}
		return true, 0
	}

	if opts.highlight != "" {
		set, err := app.Highlights(ctx, opts.file, opts.highlight)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return true, 1
		}
		data, err := report.RenderJSON(set)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return true, 1
		}
		fmt.Println(string(data))
		return true, 0
	}

	if opts.file != "" {
		fileReport, err := app.AnalyzeFile(ctx, opts.file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return true, 1
		}
		if opts.jsonOut {
			data, err := report.RenderJSON(fileReport)
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				return true, 1
			}
			fmt.Println(string(data))
		} else {
			fmt.Print(report.RenderFileReport(fileReport))
		}
		return true, 0
	}

	return false, 0
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path != defaultConfigPath {
		return nil, err
	}
	if os.IsNotExist(err) {
		return config.DefaultConfig(), nil
	}
	return nil, err
}

func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	if opts.highlight != "" && opts.file == "" {
		return fmt.Errorf("-highlight requires -file: pylens -file <path> -highlight <function>")
	}
	if opts.ui && opts.file != "" {
		return fmt.Errorf("-ui and -file cannot be used together")
	}

	if len(opts.args) > 0 {
		cfg.Paths.ProjectRoot = opts.args[0]
	}
	return nil
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "pylens", "pylens.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "pylens", "pylens.log")
	}

	return "pylens.log"
}
