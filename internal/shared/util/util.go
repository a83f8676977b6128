package util

import (
	"path"
	"sort"
	"strings"
)

// NormalizePatternPath cleans and normalizes paths for matcher/pattern usage.
func NormalizePatternPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ModuleNameForPath derives the Python module name for a file path:
// "pkg/utils.py" -> "utils". Package __init__ files map to the package name.
func ModuleNameForPath(filePath string) string {
	normalized := NormalizePatternPath(filePath)
	base := path.Base(normalized)
	base = strings.TrimSuffix(base, ".py")
	if base == "__init__" {
		parent := path.Dir(normalized)
		if parent != "." && parent != "/" {
			return path.Base(parent)
		}
	}
	return base
}
