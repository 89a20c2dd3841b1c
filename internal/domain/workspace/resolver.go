// Package workspace maps workspace ids from the configuration to directories.
package workspace

import (
	"path/filepath"
	"sync"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// Resolver resolves workspace ids to absolute paths.
// It is safe for concurrent use and may be reconfigured at any time.
type Resolver struct {
	mu         sync.RWMutex
	baseDir    string
	workspaces []types.Workspace
	paths      map[string]string
}

// NewResolver creates a resolver anchoring relative paths at baseDir
func NewResolver(baseDir string, workspaces []types.Workspace) *Resolver {
	r := &Resolver{baseDir: baseDir}
	r.Set(workspaces)
	return r
}

// Set replaces the known workspaces
func (r *Resolver) Set(workspaces []types.Workspace) {
	paths := make(map[string]string, len(workspaces))
	for _, ws := range workspaces {
		path := ws.Path
		if !filepath.IsAbs(path) && r.baseDir != "" {
			path = filepath.Join(r.baseDir, path)
		}
		paths[ws.ID] = filepath.Clean(path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces = append([]types.Workspace(nil), workspaces...)
	r.paths = paths
}

// Resolve returns the directory of a workspace
func (r *Resolver) Resolve(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	path, ok := r.paths[id]
	return path, ok
}

// List returns the configured workspaces in configuration order
func (r *Resolver) List() []types.Workspace {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.Workspace{}, r.workspaces...)
}
