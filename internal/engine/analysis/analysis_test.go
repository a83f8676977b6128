package analysis

import (
	"strings"
	"sync"
	"testing"
	"time"

	"pylens/internal/core/errors"
	"pylens/internal/engine/parser"
	"pylens/internal/engine/resolver"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 5 * time.Second
	}
	eng, err := NewEngine(opts)
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestAnalyzeExtractsAndCaches(t *testing.T) {
	eng := newTestEngine(t, Options{})
	code := "def greet():\n    pass\n\ngreet()\n"

	first, err := eng.Analyze(code, "a.py")
	if err != nil {
		t.Fatal(err)
	}
	if first.Metadata.FunctionCount != 1 || first.Metadata.CallCount != 1 {
		t.Fatalf("metadata = %+v", first.Metadata)
	}

	second, err := eng.Analyze(code, "a.py")
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Error("unchanged content should return the cached result")
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	eng := newTestEngine(t, Options{})
	for _, code := range []string{"", "   \n\t\n"} {
		result, err := eng.Analyze(code, "")
		if err != nil {
			t.Fatal(err)
		}
		if !result.IsEmpty() {
			t.Errorf("code %q: expected empty result", code)
		}
		if result.Functions == nil || result.CallersByFunc == nil {
			t.Error("empty result must carry empty collections")
		}
	}
	if eng.cache.Len() != 0 {
		t.Error("empty results must not be cached")
	}
}

func TestAnalyzeRejectsOversizedInput(t *testing.T) {
	eng := newTestEngine(t, Options{MaxFileSize: 16})
	_, err := eng.Analyze(strings.Repeat("x = 1\n", 10), "big.py")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Errorf("error code mismatch: %v", err)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewResultCache(20 * time.Millisecond)
	result := parser.EmptyResult()
	result.Functions = append(result.Functions, parser.Function{Name: "f", Line: 1, EndLine: 1})
	result.Normalize()

	cache.Put("k", result)
	if cache.Get("k") == nil {
		t.Fatal("expected a hit before expiry")
	}
	time.Sleep(30 * time.Millisecond)
	if cache.Get("k") != nil {
		t.Error("expected expiry after TTL")
	}
	if cache.Len() != 0 {
		t.Error("expired entry should be evicted on lookup")
	}
}

func TestCacheRefusesEmptyResult(t *testing.T) {
	cache := NewResultCache(time.Minute)
	cache.Put("k", parser.EmptyResult().Normalize())
	if cache.Len() != 0 {
		t.Error("empty result must not be stored")
	}
}

func TestContentKeyDistinguishesContent(t *testing.T) {
	if ContentKey("a = 1") == ContentKey("a = 2") {
		t.Error("different content must hash differently")
	}
	if ContentKey("a = 1") != ContentKey("a = 1") {
		t.Error("identical content must hash identically")
	}
}

func TestCrossFileKeySensitivity(t *testing.T) {
	files := map[string]string{"a.py": "import b\n", "b.py": "def f(): pass\n"}
	base := CrossFileKey("a.py", files["a.py"], files)

	edited := map[string]string{"a.py": "import b\n", "b.py": "def g(): pass\n"}
	if CrossFileKey("a.py", edited["a.py"], edited) == base {
		t.Error("sibling edit must change the key")
	}
	if CrossFileKey("b.py", files["b.py"], files) == base {
		t.Error("different target must change the key")
	}
	if CrossFileKey("a.py", files["a.py"], map[string]string{"a.py": files["a.py"], "b.py": files["b.py"]}) != base {
		t.Error("same inputs must reproduce the key")
	}
}

func TestStateTrackerReusesUnchangedTree(t *testing.T) {
	provider, err := parser.NewProvider(0)
	if err != nil {
		t.Fatal(err)
	}
	tracker := NewStateTracker(provider)
	content := []byte("def f():\n    pass\n")

	first := tracker.Tree("a.py", content)
	if first == nil {
		t.Fatal("nil tree")
	}
	first.Close()
	stored := tracker.states["a.py"].Tree

	second := tracker.Tree("a.py", content)
	if second == nil {
		t.Fatal("nil tree on reuse")
	}
	second.Close()
	if tracker.states["a.py"].Tree != stored {
		t.Error("unchanged content should keep the stored tree")
	}

	changedContent := []byte("def f():\n    pass\n\ndef g():\n    pass\n")
	changed := tracker.Tree("a.py", changedContent)
	if changed == nil {
		t.Fatal("nil tree after change")
	}
	result := parser.Extract(changed, changedContent)
	changed.Close()
	if len(result.Functions) != 2 {
		t.Errorf("reparse missed a function: %+v", result.Functions)
	}

	tracker.Forget("a.py")
	if tracker.Len() != 0 {
		t.Error("forget should drop the state")
	}
}

// Returned trees are copies, so a reparse or Forget of the same file must
// never invalidate a tree another goroutine is still extracting from.
func TestAnalyzeConcurrentSameFile(t *testing.T) {
	eng := newTestEngine(t, Options{CacheTTL: time.Nanosecond})
	variants := []string{
		"def f():\n    pass\n",
		"def f():\n    pass\n\ndef g():\n    f()\n",
		"def h():\n    return 1\n",
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				code := variants[(i+j)%len(variants)]
				result, err := eng.Analyze(code, "same.py")
				if err != nil {
					t.Errorf("analyze failed: %v", err)
					return
				}
				if result.Metadata.FunctionCount == 0 {
					t.Error("expected at least one function")
					return
				}
				if j%7 == 0 {
					eng.Forget("same.py")
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestAnalyzeProjectMissingTarget(t *testing.T) {
	eng := newTestEngine(t, Options{})
	pctx := &resolver.ProjectContext{
		ImportMap:   map[string]string{},
		SymbolTable: map[string][]resolver.SymbolEntry{},
	}
	result, err := eng.AnalyzeProject(map[string]string{"a.py": "x = 1\n"}, pctx, "missing.py")
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsEmpty() {
		t.Error("missing target should yield an empty result")
	}
}

func TestAnalyzeProjectResolvesAndCaches(t *testing.T) {
	eng := newTestEngine(t, Options{})
	files := map[string]string{
		"a.py": "import b\n\ndef main():\n    b.compute()\n",
		"b.py": "def compute():\n    return 1\n",
	}
	pctx := &resolver.ProjectContext{
		ProjectRoot: "/proj",
		FilePaths:   []string{"a.py", "b.py"},
		ImportMap:   map[string]string{"a": "a.py", "b": "b.py"},
		SymbolTable: map[string][]resolver.SymbolEntry{
			"main":    {{FilePath: "a.py"}},
			"compute": {{FilePath: "b.py"}},
		},
	}

	first, err := eng.AnalyzeProject(files, pctx, "b.py")
	if err != nil {
		t.Fatal(err)
	}
	positions := first.CallersByFunc["compute"]
	if len(positions) != 1 || positions[0].FilePath != "a.py" {
		t.Fatalf("callers_by_func[compute] = %+v", positions)
	}

	second, err := eng.AnalyzeProject(files, pctx, "b.py")
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Error("unchanged project should return the cached result")
	}
}

func TestImports(t *testing.T) {
	eng := newTestEngine(t, Options{})
	imports := eng.Imports("import os\nfrom utils import area\n")
	if len(imports) != 2 {
		t.Fatalf("imports = %+v", imports)
	}
	if imports[1].Kind != parser.ImportKindFrom || imports[1].Symbol != "area" {
		t.Errorf("from-import not recorded: %+v", imports[1])
	}
}
