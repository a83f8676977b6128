package views

import (
	"fmt"
	"strings"

	"pylens/internal/engine/parser"
)

// CodeLensItem is the inline annotation for one function definition.
type CodeLensItem struct {
	Name        string `json:"name"`
	Line        int    `json:"line"`
	EndLine     int    `json:"end_line"`
	CallerCount int    `json:"caller_count"`
	CalleeCount int    `json:"callee_count"`
	Title       string `json:"title"`
	Tooltip     string `json:"tooltip"`
}

// CodeLens builds one item per function: how many places call it, and how
// many user-defined functions it calls in its body range. Builtin calls do
// not count as callees.
func CodeLens(result *parser.AnalysisResult) []CodeLensItem {
	items := []CodeLensItem{}
	if result == nil {
		return items
	}
	defined := result.FunctionNames()

	for _, fn := range result.Functions {
		if fn.Name == "" || fn.Line <= 0 || fn.EndLine <= 0 {
			continue
		}
		callerCount := len(result.CallersByFunc[fn.Name])
		calleeCount := countCalleesInRange(result.Calls, defined, fn.Line, fn.EndLine)

		items = append(items, CodeLensItem{
			Name:        fn.Name,
			Line:        fn.Line,
			EndLine:     fn.EndLine,
			CallerCount: callerCount,
			CalleeCount: calleeCount,
			Title:       fmt.Sprintf("↑ %d callers • ↓ %d callees", callerCount, calleeCount),
			Tooltip:     buildTooltip(fn.Name, callerCount, calleeCount),
		})
	}
	return items
}

func countCalleesInRange(calls []parser.Call, defined map[string]bool, startLine, endLine int) int {
	count := 0
	for _, call := range calls {
		if call.Line >= startLine && call.Line <= endLine && defined[call.Name] {
			count++
		}
	}
	return count
}

func buildTooltip(name string, callerCount, calleeCount int) string {
	parts := []string{
		fmt.Sprintf("Function: %s", name),
		fmt.Sprintf("Called by %d location(s)", callerCount),
		fmt.Sprintf("Calls %d function(s)", calleeCount),
	}
	if callerCount > 0 {
		parts = append(parts, "Click to navigate to callers")
	} else {
		parts = append(parts, " Unused function - consider removing")
	}
	return strings.Join(parts, " | ")
}
