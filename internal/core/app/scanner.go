package app

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"pylens/internal/engine/resolver"
	"pylens/internal/shared/util"
)

// ScanProject walks root and returns the relative paths of every Python
// source file, honoring the configured exclude globs. Paths use forward
// slashes and come back sorted.
func (a *App) ScanProject(root string) ([]string, error) {
	dirGlobs := make([]glob.Glob, 0, len(a.Config.Exclude.Dirs))
	for _, p := range a.Config.Exclude.Dirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(a.Config.Exclude.Files))
	for _, p := range a.Config.Exclude.Files {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			for _, g := range dirGlobs {
				if g.Match(base) || g.Match(util.NormalizePatternPath(path)) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !strings.HasSuffix(base, ".py") {
			return nil
		}
		for _, g := range fileGlobs {
			if g.Match(base) {
				return nil
			}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// LoadFiles reads the given relative paths under root. Files above the size
// limit or unreadable are skipped with a warning, never fatal.
func (a *App) LoadFiles(root string, paths []string) map[string]string {
	files := make(map[string]string, len(paths))
	for _, rel := range paths {
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			slog.Warn("failed to read project file", "path", rel, "error", err)
			continue
		}
		if a.Config.Engine.MaxFileSize > 0 && len(content) > a.Config.Engine.MaxFileSize {
			slog.Warn("skipping oversized project file", "path", rel, "size", len(content))
			continue
		}
		files[rel] = string(content)
	}
	return files
}

// BuildProjectContext derives the import map and symbol table for a set of
// project files: module name to file path, and function name to every file
// that defines it.
func (a *App) BuildProjectContext(root string, files map[string]string) *resolver.ProjectContext {
	pctx := &resolver.ProjectContext{
		ProjectRoot: root,
		FilePaths:   util.SortedStringKeys(files),
		ImportMap:   make(map[string]string, len(files)),
		SymbolTable: make(map[string][]resolver.SymbolEntry),
	}

	for _, path := range pctx.FilePaths {
		pctx.ImportMap[util.ModuleNameForPath(path)] = path

		result, err := a.Engine.Analyze(files[path], path)
		if err != nil {
			slog.Warn("failed to analyze file for symbol table", "path", path, "error", err)
			continue
		}
		for _, fn := range result.Functions {
			pctx.SymbolTable[fn.Name] = append(pctx.SymbolTable[fn.Name], resolver.SymbolEntry{FilePath: path})
		}
	}

	return pctx
}
