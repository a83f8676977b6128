package util

import "testing"

func TestNormalizePatternPath(t *testing.T) {
	cases := map[string]string{
		"./src/app.py":  "src/app.py",
		"src\\app.py":   "src/app.py",
		"  src/a.py  ":  "src/a.py",
		".":             "",
		"src/../lib.py": "lib.py",
	}
	for in, want := range cases {
		if got := NormalizePatternPath(in); got != want {
			t.Errorf("NormalizePatternPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestModuleNameForPath(t *testing.T) {
	cases := map[string]string{
		"utils.py":         "utils",
		"pkg/helpers.py":   "helpers",
		"pkg/__init__.py":  "pkg",
		"./a/b/compute.py": "compute",
	}
	for in, want := range cases {
		if got := ModuleNameForPath(in); got != want {
			t.Errorf("ModuleNameForPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSortedStringKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	keys := SortedStringKeys(m)
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Errorf("unexpected key order: %v", keys)
	}
}
