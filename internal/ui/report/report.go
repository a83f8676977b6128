package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"pylens/internal/core/app"
	"pylens/internal/data/history"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	deadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))
)

// RenderSummary renders a project report as a styled terminal summary.
func RenderSummary(r *app.ProjectReport) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Project Analysis"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Files: %d | Functions: %d | Calls: %d | Cross-file refs: %d\n",
		r.FileCount, r.FunctionCount, r.CallCount, r.CrossFileCount))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Run %s completed in %s", r.RunID, r.Duration.Round(time.Millisecond))))
	b.WriteString("\n\n")

	if r.DeadCount == 0 {
		b.WriteString(okStyle.Render("  No unused functions detected"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(deadStyle.Render(fmt.Sprintf("  %d unused function(s)", r.DeadCount)))
	b.WriteString("\n")
	for _, file := range r.Files {
		for _, dead := range file.DeadCode.DeadFunctions {
			b.WriteString(fmt.Sprintf("    %s:%d %s\n", file.Path, dead.Line, dead.Message))
		}
	}
	return b.String()
}

// RenderFileReport renders one file's functions with their lens annotations.
func RenderFileReport(r *app.FileReport) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(r.Path))
	b.WriteString("\n")
	if len(r.CodeLens) == 0 {
		b.WriteString(dimStyle.Render("  no functions"))
		b.WriteString("\n")
		return b.String()
	}

	for _, item := range r.CodeLens {
		b.WriteString(fmt.Sprintf("  %4d  %-24s %s\n", item.Line, item.Name, item.Title))
	}
	if r.DeadCode.TotalUnused > 0 {
		b.WriteString(deadStyle.Render(fmt.Sprintf("  %d unused", r.DeadCode.TotalUnused)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTrend renders snapshot deltas as a plain table.
func RenderTrend(points []history.TrendPoint) string {
	if len(points) == 0 {
		return dimStyle.Render("No trend data yet; run at least two analyses with history enabled.") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("History Trend"))
	b.WriteString("\n")
	b.WriteString("  Timestamp            Functions  Δfn  Dead  Δdead\n")
	for _, p := range points {
		b.WriteString(fmt.Sprintf("  %s  %9d  %+3d  %4d  %+5d\n",
			p.Timestamp.Format("2006-01-02 15:04:05"),
			p.FunctionCount, p.FunctionsDelta, p.DeadCount, p.DeadDelta))
	}
	return b.String()
}

// RenderJSON marshals any report payload for machine consumers.
func RenderJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
