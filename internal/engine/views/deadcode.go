package views

import (
	"fmt"
	"strings"

	"pylens/internal/engine/parser"
)

// entry points and special methods are never reported as dead
var excludedNames = map[string]bool{
	"main":     true,
	"__init__": true,
	"__main__": true,
}

// DeadFunction is one function with zero recorded callers.
type DeadFunction struct {
	Name    string `json:"name"`
	Line    int    `json:"line"`
	EndLine int    `json:"end_line"`
	Message string `json:"message"`
}

// DeadCodeReport summarizes unused functions for one analysis result.
type DeadCodeReport struct {
	DeadFunctions  []DeadFunction `json:"dead_functions"`
	TotalUnused    int            `json:"total_unused"`
	TotalFunctions int            `json:"total_functions"`
}

// DeadCode reports every function with zero callers, skipping known entry
// points and dunder methods. Functions appear in definition order.
func DeadCode(result *parser.AnalysisResult) *DeadCodeReport {
	report := &DeadCodeReport{DeadFunctions: []DeadFunction{}}
	if result == nil {
		return report
	}
	report.TotalFunctions = len(result.Functions)

	for _, fn := range result.Functions {
		if fn.Name == "" || excludedNames[fn.Name] {
			continue
		}
		if strings.HasPrefix(fn.Name, "__") && strings.HasSuffix(fn.Name, "__") {
			continue
		}
		if len(result.CallersByFunc[fn.Name]) > 0 {
			continue
		}
		report.DeadFunctions = append(report.DeadFunctions, DeadFunction{
			Name:    fn.Name,
			Line:    fn.Line,
			EndLine: fn.EndLine,
			Message: fmt.Sprintf("Unused function '%s' (0 callers) - safe to delete?", fn.Name),
		})
	}
	report.TotalUnused = len(report.DeadFunctions)
	return report
}
