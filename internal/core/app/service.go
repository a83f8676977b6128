package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pylens/internal/core/errors"
	"pylens/internal/data/history"
	"pylens/internal/engine/parser"
	"pylens/internal/engine/views"
	"pylens/internal/shared/observability"
)

// FileReport is the full analysis of one file plus its derived views.
type FileReport struct {
	Path     string                 `json:"path"`
	Analysis *parser.AnalysisResult `json:"analysis"`
	DeadCode *views.DeadCodeReport  `json:"dead_code"`
	CodeLens []views.CodeLensItem   `json:"code_lens"`
}

// ProjectReport aggregates per-file project-scope analysis for one run.
type ProjectReport struct {
	RunID          string        `json:"run_id"`
	Root           string        `json:"root"`
	Files          []FileReport  `json:"files"`
	FileCount      int           `json:"file_count"`
	FunctionCount  int           `json:"function_count"`
	CallCount      int           `json:"call_count"`
	CrossFileCount int           `json:"cross_file_count"`
	DeadCount      int           `json:"dead_count"`
	Duration       time.Duration `json:"duration"`
}

// AnalyzeFile analyzes a single file in isolation and builds its views.
func (a *App) AnalyzeFile(ctx context.Context, path string) (*FileReport, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.AnalyzeFile",
		trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeNotFound, "read source file")
		return nil, errors.AddContext(wrapped, errors.CtxPath, path)
	}

	result, err := a.Engine.Analyze(string(content), path)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}

	return &FileReport{
		Path:     path,
		Analysis: result,
		DeadCode: views.DeadCode(result),
		CodeLens: views.CodeLens(result),
	}, nil
}

// AnalyzeProjectTree scans the configured project root, builds the project
// context, and runs cross-file analysis for every file.
func (a *App) AnalyzeProjectTree(ctx context.Context) (*ProjectReport, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.AnalyzeProjectTree")
	defer span.End()

	start := time.Now()
	root := a.Config.Paths.ProjectRoot

	paths, err := a.ScanProject(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "scan project")
	}
	files := a.LoadFiles(root, paths)
	pctx := a.BuildProjectContext(root, files)

	report := &ProjectReport{
		RunID: uuid.NewString(),
		Root:  root,
		Files: make([]FileReport, 0, len(files)),
	}
	span.SetAttributes(attribute.String("run_id", report.RunID), attribute.Int("files", len(files)))

	for _, path := range pctx.FilePaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := a.Engine.AnalyzeProject(files, pctx, path)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, path)
		}

		dead := views.DeadCode(result)
		report.Files = append(report.Files, FileReport{
			Path:     path,
			Analysis: result,
			DeadCode: dead,
			CodeLens: views.CodeLens(result),
		})

		report.FunctionCount += result.Metadata.FunctionCount
		report.CallCount += result.Metadata.CallCount
		report.DeadCount += dead.TotalUnused
		for _, call := range result.Calls {
			if call.IsCrossFile {
				report.CrossFileCount++
			}
		}
	}

	report.FileCount = len(report.Files)
	report.Duration = time.Since(start)

	if a.History != nil {
		if err := a.saveSnapshot(report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// Highlights computes caller/callee highlights for one function in one file,
// using project-scope analysis so cross-file callers carry their paths.
func (a *App) Highlights(ctx context.Context, target, functionName string) (*views.HighlightSet, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Highlights",
		trace.WithAttributes(attribute.String("function", functionName)))
	defer span.End()

	if strings.TrimSpace(functionName) == "" {
		return nil, errors.New(errors.CodeValidationError, "function name is required")
	}

	root := a.Config.Paths.ProjectRoot
	paths, err := a.ScanProject(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "scan project")
	}
	files := a.LoadFiles(root, paths)
	if _, ok := files[target]; !ok {
		err := errors.New(errors.CodeNotFound, "target file not in project")
		return nil, errors.AddContext(err, errors.CtxPath, target)
	}
	pctx := a.BuildProjectContext(root, files)

	result, err := a.Engine.AnalyzeProject(files, pctx, target)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, target)
	}

	var fctx *views.FunctionContext
	for _, fn := range result.Functions {
		if fn.Name == functionName {
			fctx = &views.FunctionContext{Line: fn.Line, EndLine: fn.EndLine}
			break
		}
	}
	set := views.Highlights(result, functionName, fctx)
	if set.TotalCallers == 0 && set.TotalCallees == 0 && fctx == nil {
		err := errors.New(errors.CodeNotFound, "function not found in target file")
		return nil, errors.AddContext(err, errors.CtxFunction, functionName)
	}
	return set, nil
}

// CaptureTrend loads snapshots since the given time and derives their deltas.
func (a *App) CaptureTrend(ctx context.Context, since time.Time) ([]history.TrendPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.History == nil {
		return nil, errors.New(errors.CodeUnavailable, "history store is disabled")
	}
	snapshots, err := a.History.LoadSnapshots(a.projectKey(), since)
	if err != nil {
		return nil, fmt.Errorf("load history snapshots: %w", err)
	}
	return history.Trend(snapshots), nil
}

func (a *App) saveSnapshot(report *ProjectReport) error {
	snapshot := history.Snapshot{
		RunID:          report.RunID,
		Timestamp:      time.Now().UTC(),
		FileCount:      report.FileCount,
		FunctionCount:  report.FunctionCount,
		CallCount:      report.CallCount,
		CrossFileCount: report.CrossFileCount,
		DeadCount:      report.DeadCount,
	}
	if err := a.History.SaveSnapshot(a.projectKey(), snapshot); err != nil {
		return fmt.Errorf("save history snapshot: %w", err)
	}
	return nil
}

func (a *App) projectKey() string {
	key := strings.TrimSpace(a.Config.Paths.ProjectRoot)
	if key == "" || key == "." {
		if cwd, err := os.Getwd(); err == nil {
			key = cwd
		}
	}
	return key
}
