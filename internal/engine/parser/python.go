package parser

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// decoratorPattern matches a decorator line directly above a def, capturing
// the decorator's final identifier and the decorated function name. Known
// blind spots, accepted: multi-line decorator expressions, decorators called
// with arguments, same-named nested functions across files.
var decoratorPattern = regexp.MustCompile(`@(?:\w+\.)*(\w+)\s*\n\s*def\s+(\w+)`)

// Extract walks the CST and produces the raw single-file analysis:
// functions, calls, and the caller index. No cross-file data is attached.
func Extract(tree *sitter.Tree, source []byte) *AnalysisResult {
	result := EmptyResult()
	if tree == nil {
		return result
	}

	extractNode(tree.RootNode(), source, "", result)
	buildCallerIndex(result, string(source))
	return result.Normalize()
}

// extractNode is a depth-first walk carrying the innermost enclosing
// function name down the recursion.
func extractNode(node *sitter.Node, source []byte, enclosing string, result *AnalysisResult) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode != nil {
			name := nodeText(nameNode, source)
			result.Functions = append(result.Functions, Function{
				Name:        name,
				Line:        int(node.StartPosition().Row) + 1,
				EndLine:     int(node.EndPosition().Row) + 1,
				StartColumn: int(node.StartPosition().Column),
				EndColumn:   int(node.EndPosition().Column),
			})
			for i := uint(0); i < node.ChildCount(); i++ {
				extractNode(node.Child(i), source, name, result)
			}
			return
		}
	case "call":
		fnNode := node.ChildByFieldName("function")
		if fnNode != nil {
			callText := nodeText(fnNode, source)
			name := callText
			receiver := ""
			column := int(node.StartPosition().Column)
			if dot := strings.LastIndex(callText, "."); dot >= 0 {
				receiver = callText[:dot]
				name = callText[dot+1:]
				// Column points at the method identifier, just past the dot.
				column += dot + 1
			}
			result.Calls = append(result.Calls, Call{
				Name:           name,
				Line:           int(node.StartPosition().Row) + 1,
				Column:         column,
				EndColumn:      column + len(name),
				FullText:       callText,
				Receiver:       receiver,
				CallerFunction: enclosing,
			})
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		extractNode(node.Child(i), source, enclosing, result)
	}
}

// buildCallerIndex fills CallersByFunc from the recorded calls, including
// the decorator enrichment: calling a decorator's name is treated as
// implicitly invoking every function nested lexically inside every function
// that decorator decorates. The enrichment is a textual heuristic over raw
// source, independent of the CST, and is preserved as-is.
func buildCallerIndex(result *AnalysisResult, source string) {
	funcNames := result.FunctionNames()

	// decorator name -> functions it decorates
	decoratedBy := map[string][]string{}
	for _, m := range decoratorPattern.FindAllStringSubmatch(source, -1) {
		decoratedBy[m[1]] = append(decoratedBy[m[1]], m[2])
	}

	// outer function -> functions nested inside its line range
	innerByOuter := map[string][]string{}
	for _, outer := range result.Functions {
		var inners []string
		for _, inner := range result.Functions {
			if inner.Name == outer.Name {
				continue
			}
			if inner.Line >= outer.Line && inner.EndLine <= outer.EndLine {
				inners = append(inners, inner.Name)
			}
		}
		if len(inners) > 0 {
			innerByOuter[outer.Name] = inners
		}
	}

	for _, call := range result.Calls {
		if !funcNames[call.Name] {
			continue
		}
		pos := CallerPosition{Line: call.Line, Column: call.Column, EndColumn: call.EndColumn}
		result.CallersByFunc[call.Name] = append(result.CallersByFunc[call.Name], pos)
		for _, decorated := range decoratedBy[call.Name] {
			for _, inner := range innerByOuter[decorated] {
				result.CallersByFunc[inner] = append(result.CallersByFunc[inner], pos)
			}
		}
	}
}

// ExtractImports collects import statements for the resolver's alias
// handling: "import x", "import x as y", "from m import a", and
// "from m import a as b".
func ExtractImports(tree *sitter.Tree, source []byte) []Import {
	imports := []Import{}
	if tree == nil {
		return imports
	}
	collectImports(tree.RootNode(), source, &imports)
	return imports
}

func collectImports(node *sitter.Node, source []byte, imports *[]Import) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "import_statement":
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			switch child.Kind() {
			case "aliased_import":
				module := nodeText(child.ChildByFieldName("name"), source)
				alias := nodeText(child.ChildByFieldName("alias"), source)
				if module != "" {
					*imports = append(*imports, Import{Kind: ImportKindPlain, Module: module, Alias: alias})
				}
			case "dotted_name":
				*imports = append(*imports, Import{Kind: ImportKindPlain, Module: nodeText(child, source)})
			}
		}
	case "import_from_statement":
		module := nodeText(node.ChildByFieldName("module_name"), source)
		if module != "" {
			seenImportKeyword := false
			for i := uint(0); i < node.ChildCount(); i++ {
				child := node.Child(i)
				switch child.Kind() {
				case "import":
					seenImportKeyword = true
				case "aliased_import":
					symbol := nodeText(child.ChildByFieldName("name"), source)
					alias := nodeText(child.ChildByFieldName("alias"), source)
					if symbol != "" {
						*imports = append(*imports, Import{Kind: ImportKindFrom, Module: module, Symbol: symbol, Alias: alias})
					}
				case "dotted_name", "identifier":
					if seenImportKeyword {
						*imports = append(*imports, Import{Kind: ImportKindFrom, Module: module, Symbol: nodeText(child, source)})
					}
				}
			}
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		collectImports(node.Child(i), source, imports)
	}
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
