package resolver

import (
	"log/slog"
	"sort"
	"sync"

	"pylens/internal/engine/parser"
	"pylens/internal/shared/observability"
)

// SymbolEntry is one known definition site for a function name.
type SymbolEntry struct {
	FilePath string `json:"file_path"`
}

// ProjectContext is the caller-supplied project knowledge: which file
// implements each module, where each function name is defined, and the
// sibling file contents. The engine never mutates it.
type ProjectContext struct {
	ProjectRoot string                   `json:"project_root"`
	FilePaths   []string                 `json:"file_paths"`
	ImportMap   map[string]string        `json:"import_map"`
	SymbolTable map[string][]SymbolEntry `json:"symbol_table"`
	Files       map[string]string        `json:"files,omitempty"`
	TargetFile  string                   `json:"target_file,omitempty"`
}

// Resolver augments a single-file analysis with references that cross file
// boundaries, using only the supplied import map and symbol table. No type
// inference is attempted.
type Resolver struct {
	provider *parser.Provider
	workers  int
}

func New(provider *parser.Provider) *Resolver {
	return &Resolver{provider: provider, workers: 4}
}

// Resolve returns a new enriched result; target is not mutated. The forward
// pass classifies the target's own calls as cross-file; the reverse pass
// scans every sibling for calls into the target. The enriched result carries
// FilePath = the target file so views know which file owns local occurrences.
func (r *Resolver) Resolve(target *parser.AnalysisResult, pctx *ProjectContext) *parser.AnalysisResult {
	enriched := &parser.AnalysisResult{
		Functions:     append([]parser.Function(nil), target.Functions...),
		Calls:         append([]parser.Call(nil), target.Calls...),
		CallersByFunc: copyCallers(target.CallersByFunc),
		Imports:       target.Imports,
		FilePath:      pctx.TargetFile,
	}

	r.forwardPass(enriched, pctx)
	r.reversePass(enriched, pctx)

	crossFile := 0
	for _, call := range enriched.Calls {
		if call.IsCrossFile {
			crossFile++
		}
	}
	observability.CrossFileReferences.Set(float64(crossFile))

	return enriched.Normalize()
}

// forwardPass marks the target file's calls that resolve, via the import
// map and symbol table, to functions defined in other files.
func (r *Resolver) forwardPass(result *parser.AnalysisResult, pctx *ProjectContext) {
	aliases := moduleAliases(result.Imports)

	for i := range result.Calls {
		call := &result.Calls[i]

		switch {
		case call.Receiver != "":
			// Direct import: "import utils" then "utils.calculate_area()".
			if modulePath, ok := pctx.ImportMap[call.Receiver]; ok {
				if symbolDefinedAt(pctx.SymbolTable, call.Name, modulePath) {
					call.IsCrossFile = true
					call.FilePath = modulePath
					continue
				}
			}
			// Aliased import: "import utils as u" then "u.calculate_area()".
			if actual, ok := aliases[call.Receiver]; ok {
				if modulePath, ok := pctx.ImportMap[actual]; ok {
					if symbolDefinedAt(pctx.SymbolTable, call.Name, modulePath) {
						call.IsCrossFile = true
						call.FilePath = modulePath
					}
				}
			}
		default:
			// Bare call: "from utils import calculate_area" then "calculate_area()".
			for _, imp := range result.Imports {
				if imp.Kind != parser.ImportKindFrom || imp.Symbol != call.Name {
					continue
				}
				modulePath, ok := pctx.ImportMap[imp.Module]
				if !ok {
					continue
				}
				if symbolDefinedAt(pctx.SymbolTable, call.Name, modulePath) {
					call.IsCrossFile = true
					call.FilePath = modulePath
					break
				}
			}
		}
	}
}

type siblingHits struct {
	calls     []parser.Call
	positions map[string][]parser.CallerPosition
}

// reversePass parses every other project file and records its calls into
// the target file as cross-file callers. Siblings are processed by a small
// worker pool; results merge in sorted path order so output is
// deterministic. A failed sibling is skipped, never fatal.
func (r *Resolver) reversePass(result *parser.AnalysisResult, pctx *ProjectContext) {
	paths := make([]string, 0, len(pctx.Files))
	for path := range pctx.Files {
		if path == pctx.TargetFile {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	hits := make([]*siblingHits, len(paths))
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			hits[i] = r.scanSibling(path, pctx.Files[path], pctx)
		}(i, path)
	}
	wg.Wait()

	for _, h := range hits {
		if h == nil {
			continue
		}
		result.Calls = append(result.Calls, h.calls...)
		for name, positions := range h.positions {
			result.CallersByFunc[name] = append(result.CallersByFunc[name], positions...)
		}
	}
}

func (r *Resolver) scanSibling(path, content string, pctx *ProjectContext) *siblingHits {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("sibling analysis failed, skipping", "path", path, "panic", rec)
			observability.SiblingParseFailuresTotal.Inc()
		}
	}()

	tree := r.provider.Parse([]byte(content))
	if tree == nil {
		slog.Warn("sibling parse produced no tree, skipping", "path", path)
		observability.SiblingParseFailuresTotal.Inc()
		return nil
	}
	defer tree.Close()

	analysis := parser.Extract(tree, []byte(content))

	h := &siblingHits{positions: make(map[string][]parser.CallerPosition)}
	for _, call := range analysis.Calls {
		if !symbolDefinedAt(pctx.SymbolTable, call.Name, pctx.TargetFile) {
			continue
		}
		// The caller lives in this sibling, so FilePath is the sibling path.
		cross := call
		cross.IsCrossFile = true
		cross.FilePath = path
		h.calls = append(h.calls, cross)
		h.positions[call.Name] = append(h.positions[call.Name], parser.CallerPosition{
			Line:      call.Line,
			Column:    call.Column,
			EndColumn: call.EndColumn,
			FilePath:  path,
		})
	}
	if len(h.calls) == 0 {
		return nil
	}
	return h
}

// moduleAliases maps local aliases to the module (or module.symbol) they
// name: "import utils as u" and "from utils import area as a" forms.
func moduleAliases(imports []parser.Import) map[string]string {
	aliases := make(map[string]string)
	for _, imp := range imports {
		if imp.Alias == "" {
			continue
		}
		switch imp.Kind {
		case parser.ImportKindPlain:
			aliases[imp.Alias] = imp.Module
		case parser.ImportKindFrom:
			aliases[imp.Alias] = imp.Module + "." + imp.Symbol
		}
	}
	return aliases
}

func symbolDefinedAt(table map[string][]SymbolEntry, name, filePath string) bool {
	for _, entry := range table[name] {
		if entry.FilePath == filePath {
			return true
		}
	}
	return false
}

func copyCallers(src map[string][]parser.CallerPosition) map[string][]parser.CallerPosition {
	dst := make(map[string][]parser.CallerPosition, len(src))
	for name, positions := range src {
		dst[name] = append([]parser.CallerPosition(nil), positions...)
	}
	return dst
}
