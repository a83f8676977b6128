package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewWatcherRequiresCallback(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, nil, nil, nil); err == nil {
		t.Fatal("nil callback must be rejected")
	}
}

func TestNewWatcherRejectsBadGlob(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, []string{"["}, nil, func([]string) {}); err == nil {
		t.Fatal("invalid dir glob must be rejected")
	}
	if _, err := NewWatcher(time.Millisecond, nil, []string{"["}, func([]string) {}); err == nil {
		t.Fatal("invalid file glob must be rejected")
	}
}

func TestShouldExcludeFile(t *testing.T) {
	w, err := NewWatcher(time.Millisecond, nil, []string{"conftest*"}, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	cases := []struct {
		path    string
		exclude bool
	}{
		{"app.py", false},
		{"notes.txt", true},
		{"conftest.py", true},
		{filepath.Join("pkg", "utils.py"), false},
	}
	for _, tc := range cases {
		if got := w.shouldExcludeFile(tc.path); got != tc.exclude {
			t.Errorf("shouldExcludeFile(%q) = %v, want %v", tc.path, got, tc.exclude)
		}
	}
}

func TestShouldExcludeDir(t *testing.T) {
	w, err := NewWatcher(time.Millisecond, []string{"__pycache__", ".*"}, nil, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if !w.shouldExcludeDir(filepath.Join("proj", "__pycache__")) {
		t.Error("__pycache__ must be excluded")
	}
	if !w.shouldExcludeDir(".git") {
		t.Error("dot directories must be excluded")
	}
	if w.shouldExcludeDir(filepath.Join("proj", "src")) {
		t.Error("src must not be excluded")
	}
}

func TestDebouncedBatchDelivery(t *testing.T) {
	dir := t.TempDir()

	var (
		mu      sync.Mutex
		batches [][]string
	)
	done := make(chan struct{}, 4)
	w, err := NewWatcher(50*time.Millisecond, nil, nil, func(paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
		done <- struct{}{}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{dir}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"a.py", "b.py", "skip.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x = 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("no batch delivered")
	}
	// Drain any trailing batch from a second debounce window.
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	seen := map[string]bool{}
	for _, batch := range batches {
		for _, p := range batch {
			seen[filepath.Base(p)] = true
		}
	}
	if !seen["a.py"] || !seen["b.py"] {
		t.Errorf("expected both python files in batches, got %v", seen)
	}
	if seen["skip.txt"] {
		t.Error("non-python file must be filtered out")
	}
}
