package parser

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, code string) (*Provider, *AnalysisResult) {
	t.Helper()
	provider, err := NewProvider(0)
	if err != nil {
		t.Fatal(err)
	}
	tree := provider.Parse([]byte(code))
	if tree == nil {
		t.Fatal("parse returned nil tree")
	}
	t.Cleanup(tree.Close)
	return provider, Extract(tree, []byte(code))
}

func TestExtractFunctionsAndCalls(t *testing.T) {
	code := `def greet(name):
    print(name)

def main():
    greet("world")
`
	_, result := mustParse(t, code)

	if len(result.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(result.Functions))
	}
	for _, f := range result.Functions {
		if f.Line > f.EndLine {
			t.Errorf("function %s: line %d > end_line %d", f.Name, f.Line, f.EndLine)
		}
	}
	if result.Functions[0].Name != "greet" || result.Functions[0].Line != 1 {
		t.Errorf("unexpected first function: %+v", result.Functions[0])
	}
	if result.Metadata.FunctionCount != 2 || result.Metadata.CallCount != 2 {
		t.Errorf("metadata counts: %+v", result.Metadata)
	}

	var greetCall *Call
	for i := range result.Calls {
		if result.Calls[i].Name == "greet" {
			greetCall = &result.Calls[i]
		}
	}
	if greetCall == nil {
		t.Fatal("call to greet not recorded")
	}
	if greetCall.CallerFunction != "main" {
		t.Errorf("caller_function = %q, want main", greetCall.CallerFunction)
	}
	if greetCall.Line != 5 {
		t.Errorf("call line = %d, want 5", greetCall.Line)
	}

	positions := result.CallersByFunc["greet"]
	if len(positions) != 1 || positions[0].Line != 5 {
		t.Errorf("callers_by_func[greet] = %+v", positions)
	}
}

func TestDottedCallColumnMath(t *testing.T) {
	code := `obj.method(1)
`
	_, result := mustParse(t, code)

	if len(result.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(result.Calls))
	}
	call := result.Calls[0]
	if call.Name != "method" {
		t.Errorf("name = %q, want method", call.Name)
	}
	if call.Receiver != "obj" {
		t.Errorf("receiver = %q, want obj", call.Receiver)
	}
	// "obj.method" starts at column 0; the identifier begins after "obj.".
	if call.Column != len("obj.") {
		t.Errorf("column = %d, want %d", call.Column, len("obj."))
	}
	if call.EndColumn-call.Column != len("method") {
		t.Errorf("end_column span = %d, want %d", call.EndColumn-call.Column, len("method"))
	}
	if call.FullText != "obj.method" {
		t.Errorf("full_text = %q", call.FullText)
	}
}

func TestChainedReceiverKeepsFullQualifier(t *testing.T) {
	code := `a.b.c(1)
`
	_, result := mustParse(t, code)
	if len(result.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(result.Calls))
	}
	call := result.Calls[0]
	if call.Receiver != "a.b" || call.Name != "c" {
		t.Errorf("receiver/name = %q/%q, want a.b/c", call.Receiver, call.Name)
	}
	if call.Column != len("a.b.") {
		t.Errorf("column = %d, want %d", call.Column, len("a.b."))
	}
}

func TestModuleScopeCallHasNoCallerFunction(t *testing.T) {
	code := `def setup():
    pass

setup()
`
	_, result := mustParse(t, code)
	var found bool
	for _, c := range result.Calls {
		if c.Name == "setup" {
			found = true
			if c.CallerFunction != "" {
				t.Errorf("module-scope call has caller_function %q", c.CallerFunction)
			}
		}
	}
	if !found {
		t.Fatal("setup() call not recorded")
	}
}

func TestNestedFunctionsRecordedIndependently(t *testing.T) {
	code := `def outer():
    def inner():
        pass
    inner()
`
	_, result := mustParse(t, code)
	if len(result.Functions) != 2 {
		t.Fatalf("expected outer and inner, got %+v", result.Functions)
	}
	var innerCall *Call
	for i := range result.Calls {
		if result.Calls[i].Name == "inner" {
			innerCall = &result.Calls[i]
		}
	}
	if innerCall == nil {
		t.Fatal("inner() call not recorded")
	}
	if innerCall.CallerFunction != "outer" {
		t.Errorf("caller_function = %q, want outer", innerCall.CallerFunction)
	}
}

func TestDecoratorPropagation(t *testing.T) {
	code := `def log_calls(fn):
    return fn

@log_calls
def outer():
    def inner():
        pass
    return inner

log_calls()
`
	_, result := mustParse(t, code)

	positions := result.CallersByFunc["inner"]
	if len(positions) == 0 {
		t.Fatal("expected callers_by_func[inner] to carry the log_calls() position")
	}
	lastLine := strings.Count(code, "\n")
	if positions[0].Line != lastLine {
		t.Errorf("propagated caller line = %d, want %d", positions[0].Line, lastLine)
	}
}

func TestUnknownCalleeStillRecordedAsCall(t *testing.T) {
	code := `def run():
    missing_helper()
`
	_, result := mustParse(t, code)
	if len(result.Calls) != 1 {
		t.Fatalf("expected the unresolved call to be recorded, got %d", len(result.Calls))
	}
	if _, ok := result.CallersByFunc["missing_helper"]; ok {
		t.Error("unresolved call must not appear in callers_by_func")
	}
}

func TestExtractImports(t *testing.T) {
	code := `import os
import numpy as np
from utils import calculate_area
from helpers import fmt as pretty
`
	provider, err := NewProvider(0)
	if err != nil {
		t.Fatal(err)
	}
	tree := provider.Parse([]byte(code))
	if tree == nil {
		t.Fatal("parse returned nil tree")
	}
	defer tree.Close()

	imports := ExtractImports(tree, []byte(code))
	if len(imports) != 4 {
		t.Fatalf("expected 4 imports, got %d: %+v", len(imports), imports)
	}

	want := []Import{
		{Kind: ImportKindPlain, Module: "os"},
		{Kind: ImportKindPlain, Module: "numpy", Alias: "np"},
		{Kind: ImportKindFrom, Module: "utils", Symbol: "calculate_area"},
		{Kind: ImportKindFrom, Module: "helpers", Symbol: "fmt", Alias: "pretty"},
	}
	for i, w := range want {
		if imports[i] != w {
			t.Errorf("import[%d] = %+v, want %+v", i, imports[i], w)
		}
	}
}

func TestExtractEmptySource(t *testing.T) {
	provider, err := NewProvider(0)
	if err != nil {
		t.Fatal(err)
	}
	tree := provider.Parse([]byte(""))
	result := Extract(tree, []byte(""))
	if !result.IsEmpty() {
		t.Errorf("expected empty result, got %+v", result.Metadata)
	}
	if result.Functions == nil || result.Calls == nil || result.CallersByFunc == nil {
		t.Error("empty result must carry empty collections, not nil")
	}
	if tree != nil {
		tree.Close()
	}
}

func TestApplyFullEditEndPoints(t *testing.T) {
	oldSrc := []byte("a = 1\nb = 2")
	pt := endPoint(oldSrc)
	if pt.Row != 1 || pt.Column != 5 {
		t.Errorf("endPoint = %+v, want row 1 col 5", pt)
	}
	if p := endPoint(nil); p.Row != 0 || p.Column != 0 {
		t.Errorf("endPoint(nil) = %+v", p)
	}
}
