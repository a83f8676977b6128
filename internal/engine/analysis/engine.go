package analysis

import (
	"log/slog"
	"strings"
	"time"

	"pylens/internal/core/errors"
	"pylens/internal/engine/parser"
	"pylens/internal/engine/resolver"
	"pylens/internal/shared/observability"
)

// Options configure an Engine.
type Options struct {
	// CacheTTL is the result cache entry lifetime.
	CacheTTL time.Duration
	// MaxFileSize rejects larger inputs before any parsing happens.
	MaxFileSize int
	// ParseBudget bounds a single parse; zero means unbounded.
	ParseBudget time.Duration
}

// Engine is the analysis engine: one instance serves all requests. It owns
// the CST provider, the per-file incremental state, and the result cache.
// The state and cache maps each guard themselves; requests touching
// disjoint files or keys do not contend.
type Engine struct {
	provider *parser.Provider
	states   *StateTracker
	cache    *ResultCache
	resolver *resolver.Resolver
	maxSize  int
}

// NewEngine constructs the engine. A grammar that fails to load is fatal:
// without the CST provider no request can be served.
func NewEngine(opts Options) (*Engine, error) {
	provider, err := parser.NewProvider(opts.ParseBudget)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "analysis engine construction failed")
	}
	return &Engine{
		provider: provider,
		states:   NewStateTracker(provider),
		cache:    NewResultCache(opts.CacheTTL),
		resolver: resolver.New(provider),
		maxSize:  opts.MaxFileSize,
	}, nil
}

// Analyze runs single-file analysis. fileID, when non-empty, enables
// incremental reparse against the file's previous content. Results are
// cached by content hash; all-empty results are recomputed every time.
func (e *Engine) Analyze(code, fileID string) (*parser.AnalysisResult, error) {
	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(code) == "" {
		return parser.EmptyResult().Normalize(), nil
	}
	if e.maxSize > 0 && len(code) > e.maxSize {
		err := errors.New(errors.CodeValidationError, "input too large")
		return nil, errors.AddContext(err, errors.CtxFileID, fileID)
	}

	key := ContentKey(code)
	if cached := e.cache.Get(key); cached != nil {
		return cached, nil
	}

	var result *parser.AnalysisResult
	if fileID != "" {
		tree := e.states.Tree(fileID, []byte(code))
		result = parser.Extract(tree, []byte(code))
		if tree != nil {
			tree.Close()
		}
	} else {
		tree := e.provider.Parse([]byte(code))
		result = parser.Extract(tree, []byte(code))
		if tree != nil {
			tree.Close()
		}
	}
	result.Normalize()

	observability.FunctionsExtracted.Set(float64(result.Metadata.FunctionCount))
	observability.CallsExtracted.Set(float64(result.Metadata.CallCount))

	if result.IsEmpty() {
		slog.Debug("analysis produced empty result, not caching", "file_id", fileID)
	} else {
		e.cache.Put(key, result)
	}
	return result, nil
}

// AnalyzeProject analyzes targetFile with full project context: the target's
// own analysis plus cross-file references resolved against the sibling
// files. The enriched result is cached under a key covering the target and
// every sibling's content.
func (e *Engine) AnalyzeProject(files map[string]string, pctx *resolver.ProjectContext, targetFile string) (*parser.AnalysisResult, error) {
	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("analyze_project").Observe(time.Since(start).Seconds())
	}()

	targetCode, ok := files[targetFile]
	if !ok || targetCode == "" {
		slog.Warn("target file missing from project files", "target", targetFile)
		return parser.EmptyResult().Normalize(), nil
	}

	crossKey := CrossFileKey(targetFile, targetCode, files)
	if cached := e.cache.Get(crossKey); cached != nil {
		return cached, nil
	}

	targetAnalysis, err := e.Analyze(targetCode, targetFile)
	if err != nil {
		return nil, err
	}

	// Work on a copy: the single-file result may be shared via the cache.
	working := *targetAnalysis
	working.Imports = e.Imports(targetCode)

	scoped := *pctx
	scoped.Files = files
	scoped.TargetFile = targetFile

	enriched := e.resolver.Resolve(&working, &scoped)
	e.cache.Put(crossKey, enriched)
	return enriched, nil
}

// Imports parses code just far enough to list its import statements.
func (e *Engine) Imports(code string) []parser.Import {
	tree := e.provider.Parse([]byte(code))
	if tree == nil {
		return []parser.Import{}
	}
	defer tree.Close()
	return parser.ExtractImports(tree, []byte(code))
}

// Forget drops all per-file state for a file identifier, e.g. when the
// watcher reports a deletion.
func (e *Engine) Forget(fileID string) {
	e.states.Forget(fileID)
}
