package views

import (
	"pylens/internal/engine/parser"
)

// Range is a single-line highlight span with 0-based columns.
type Range struct {
	Line        int `json:"line"`
	StartColumn int `json:"start_column"`
	EndColumn   int `json:"end_column"`
}

// Highlight is one marked occurrence, either a call site of the locked
// function (caller) or a call made inside a function body (callee).
type Highlight struct {
	Line         int    `json:"line"`
	Kind         string `json:"type"`
	FunctionName string `json:"function_name"`
	Range        Range  `json:"range"`
	FilePath     string `json:"file_path,omitempty"`
}

// HighlightSet is the response for one highlight request.
type HighlightSet struct {
	Callers      []Highlight `json:"callers"`
	Callees      []Highlight `json:"callees"`
	TotalCallers int         `json:"total_callers"`
	TotalCallees int         `json:"total_callees"`
}

// FunctionContext is the line span of the function whose callees should be
// highlighted. Both bounds must be positive for callees to be computed.
type FunctionContext struct {
	Line    int `json:"line"`
	EndLine int `json:"end_line"`
}

// Highlights returns caller highlights for functionName and, when a valid
// context is supplied, callee highlights inside that span.
func Highlights(result *parser.AnalysisResult, functionName string, fctx *FunctionContext) *HighlightSet {
	set := &HighlightSet{Callers: []Highlight{}, Callees: []Highlight{}}
	if result == nil {
		return set
	}
	set.Callers = callerHighlights(result, functionName)
	if fctx != nil {
		set.Callees = calleeHighlights(result, fctx)
	}
	set.TotalCallers = len(set.Callers)
	set.TotalCallees = len(set.Callees)
	return set
}

// callerHighlights walks the per-occurrence calls list, which handles
// multiple calls on one line. When no call entries match, it falls back to
// the recorded caller positions, deriving the end column from the name
// length where missing.
func callerHighlights(result *parser.AnalysisResult, functionName string) []Highlight {
	highlights := []Highlight{}

	for _, call := range result.Calls {
		if call.Name != functionName {
			continue
		}
		h := Highlight{
			Line:         call.Line,
			Kind:         "caller",
			FunctionName: functionName,
			Range:        Range{Line: call.Line, StartColumn: call.Column, EndColumn: call.EndColumn},
		}
		if call.IsCrossFile {
			h.FilePath = call.FilePath
		} else {
			h.FilePath = result.FilePath
		}
		highlights = append(highlights, h)
	}
	if len(highlights) > 0 {
		return highlights
	}

	for _, pos := range result.CallersByFunc[functionName] {
		h := Highlight{
			Line:         pos.Line,
			Kind:         "caller",
			FunctionName: functionName,
			Range:        buildRange(pos.Line, functionName, pos.Column, pos.EndColumn),
		}
		if pos.FilePath != "" {
			h.FilePath = pos.FilePath
		} else {
			h.FilePath = result.FilePath
		}
		highlights = append(highlights, h)
	}
	return highlights
}

// calleeHighlights marks calls to user-defined functions inside the span.
// Builtin and library calls are not highlighted.
func calleeHighlights(result *parser.AnalysisResult, fctx *FunctionContext) []Highlight {
	if fctx.Line <= 0 || fctx.EndLine <= 0 {
		return []Highlight{}
	}
	defined := result.FunctionNames()

	highlights := []Highlight{}
	for _, call := range result.Calls {
		if call.Line <= 0 || call.Line < fctx.Line || call.Line > fctx.EndLine {
			continue
		}
		if !defined[call.Name] {
			continue
		}
		highlights = append(highlights, Highlight{
			Line:         call.Line,
			Kind:         "callee",
			FunctionName: call.Name,
			Range:        Range{Line: call.Line, StartColumn: call.Column, EndColumn: call.EndColumn},
		})
	}
	return highlights
}

func buildRange(line int, functionName string, column, endColumn int) Range {
	start := column
	if start < 0 {
		start = 0
	}
	end := endColumn
	if end <= start {
		end = start + len(functionName)
	}
	return Range{Line: line, StartColumn: start, EndColumn: end}
}
