package parser

import (
	"log/slog"
	"time"

	"pylens/internal/core/errors"
	"pylens/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Provider wraps the tree-sitter Python grammar. It is the engine's only
// CST source: full parses, incremental reparses, and edit application all
// go through it. Construction fails loudly when the grammar cannot be
// loaded; the engine cannot serve any request without it.
type Provider struct {
	language *sitter.Language
	budget   time.Duration
}

// NewProvider loads the Python grammar. budget bounds a single parse;
// zero means unbounded.
func NewProvider(budget time.Duration) (*Provider, error) {
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	if lang == nil {
		return nil, errors.New(errors.CodeUnavailable, "python grammar failed to load")
	}
	return &Provider{language: lang, budget: budget}, nil
}

// Parse parses source from scratch. Returns nil for input the grammar
// cannot produce a tree for.
func (p *Provider) Parse(source []byte) *sitter.Tree {
	return p.parse(source, nil, "full")
}

// ParseIncremental reparses source using oldTree as a structural hint.
// oldTree must already have had the edit applied via ApplyFullEdit.
func (p *Provider) ParseIncremental(source []byte, oldTree *sitter.Tree) *sitter.Tree {
	return p.parse(source, oldTree, "incremental")
}

func (p *Provider) parse(source []byte, oldTree *sitter.Tree, mode string) *sitter.Tree {
	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}()

	sp := sitter.NewParser()
	defer sp.Close()
	if err := sp.SetLanguage(p.language); err != nil {
		slog.Error("failed to set parser language", "error", err)
		return nil
	}
	if p.budget > 0 {
		sp.SetTimeoutMicros(uint64(p.budget.Microseconds()))
	}
	return sp.Parse(source, oldTree)
}

// ApplyFullEdit marks the whole of tree as replaced: a single edit spanning
// the entire old buffer. This deliberately does not compute a minimal diff;
// the surrounding contract always reparses on content change, so the edit
// only serves as a structural hint to the grammar.
func ApplyFullEdit(tree *sitter.Tree, oldSource, newSource []byte) {
	tree.Edit(&sitter.InputEdit{
		StartByte:      0,
		OldEndByte:     uint(len(oldSource)),
		NewEndByte:     uint(len(newSource)),
		StartPosition:  sitter.Point{Row: 0, Column: 0},
		OldEndPosition: endPoint(oldSource),
		NewEndPosition: endPoint(newSource),
	})
}

// endPoint computes the (row, column) of the position just past the last
// byte of source by counting line breaks.
func endPoint(source []byte) sitter.Point {
	var row, col uint
	for _, b := range source {
		if b == '\n' {
			row++
			col = 0
		} else {
			col++
		}
	}
	return sitter.Point{Row: row, Column: col}
}
