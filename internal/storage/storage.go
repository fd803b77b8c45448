package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Workspace is a private temporary directory for one conversion request
type Workspace struct {
	ID  string
	Dir string
}

// Path returns the location of name inside the workspace
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, filepath.Base(name))
}

// WorkspaceStore hands out workspaces under a private directory it creates
// inside the configured temp dir, and tracks the ones still in use
type WorkspaceStore struct {
	root       string
	workspaces map[string]*Workspace
	mu         sync.RWMutex
}

// New creates the store's own directory inside parent. parent is created if
// missing and is never removed, so it may be shared with other content.
func New(parent string) (*WorkspaceStore, error) {
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	root, err := os.MkdirTemp(parent, "jpg2pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp root: %w", err)
	}
	return &WorkspaceStore{
		root:       root,
		workspaces: make(map[string]*Workspace),
	}, nil
}

func (s *WorkspaceStore) Root() string {
	return s.root
}

// Create makes a new uniquely named workspace directory
func (s *WorkspaceStore) Create() (*Workspace, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.root, id)
	if err := os.Mkdir(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	ws := &Workspace{
		ID:  id,
		Dir: dir,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[id] = ws
	return ws, nil
}

// Len returns the number of workspaces that have not been deleted
func (s *WorkspaceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// Delete forgets the workspace and removes its directory. Removal errors are
// logged and otherwise ignored.
func (s *WorkspaceStore) Delete(id string) {
	s.mu.Lock()
	ws, exists := s.workspaces[id]
	delete(s.workspaces, id)
	s.mu.Unlock()

	if !exists {
		return
	}
	if err := os.RemoveAll(ws.Dir); err != nil {
		slog.Debug("Unable to remove workspace", "id", id, "err", err)
	}
}

// Close removes the store's directory, including workspaces still in use.
// Anything else in the parent dir is left alone.
func (s *WorkspaceStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces = make(map[string]*Workspace)
	return os.RemoveAll(s.root)
}
