package analysis

import (
	"bytes"
	"log/slog"
	"sync"
	"time"

	"pylens/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// FileState is the last known content and tree for one file identifier.
type FileState struct {
	Content      []byte
	Tree         *sitter.Tree
	LastModified time.Time
}

// StateTracker owns per-file parse state and decides between full and
// incremental reparses. Trees held in state stay alive until replaced;
// replaced trees are closed here.
type StateTracker struct {
	mu       sync.Mutex
	provider *parser.Provider
	states   map[string]*FileState
}

func NewStateTracker(provider *parser.Provider) *StateTracker {
	return &StateTracker{
		provider: provider,
		states:   make(map[string]*FileState),
	}
}

// Tree returns a parse tree for the file's current content, updating the
// stored state as a side effect. The returned tree is a copy the caller
// owns and must Close: the stored tree never leaves the lock, so a
// concurrent reparse or Forget of the same file cannot free a tree another
// request is still walking. Unchanged content reuses the stored tree.
// Changed content is described to the grammar as a whole-buffer replacement
// edit before an incremental reparse; any failure on that path falls back
// to a full parse.
func (t *StateTracker) Tree(fileID string, content []byte) *sitter.Tree {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[fileID]
	if !ok {
		tree := t.provider.Parse(content)
		t.states[fileID] = &FileState{Content: content, Tree: tree, LastModified: time.Now()}
		return cloneTree(tree)
	}

	if bytes.Equal(state.Content, content) {
		if state.Tree == nil {
			state.Tree = t.provider.Parse(content)
			state.LastModified = time.Now()
		}
		return cloneTree(state.Tree)
	}

	tree := t.reparse(fileID, state, content)
	if state.Tree != nil && state.Tree != tree {
		state.Tree.Close()
	}
	state.Content = content
	state.Tree = tree
	state.LastModified = time.Now()
	return cloneTree(tree)
}

func cloneTree(tree *sitter.Tree) *sitter.Tree {
	if tree == nil {
		return nil
	}
	return tree.Clone()
}

func (t *StateTracker) reparse(fileID string, state *FileState, content []byte) (tree *sitter.Tree) {
	if state.Tree == nil {
		return t.provider.Parse(content)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("incremental reparse failed, falling back to full parse", "file_id", fileID, "panic", r)
			tree = t.provider.Parse(content)
		}
	}()

	parser.ApplyFullEdit(state.Tree, state.Content, content)
	tree = t.provider.ParseIncremental(content, state.Tree)
	if tree == nil {
		tree = t.provider.Parse(content)
	}
	return tree
}

// Forget drops the state for a file, closing its tree.
func (t *StateTracker) Forget(fileID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.states[fileID]; ok {
		if state.Tree != nil {
			state.Tree.Close()
		}
		delete(t.states, fileID)
	}
}

// Len returns the number of tracked files.
func (t *StateTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.states)
}
