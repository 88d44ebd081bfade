// Package registry stores generated CSS modules and which source file owns them.
package registry

import (
	"sort"
	"sync"
)

// Module is one generated CSS module.
type Module struct {
	ID      string
	Content string
}

// Registry maps module ids to CSS content and source files to the ids they
// own. Every id in the ownership index has content and every content entry has
// an owner. A Registry is safe for concurrent use; writes for one file never
// interleave and readers never observe a partial Put or Clear.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]string
	files   map[string][]string // file id -> module ids in discovery order
	owners  map[string]string   // module id -> file id
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		modules: make(map[string]string),
		files:   make(map[string][]string),
		owners:  make(map[string]string),
	}
}

// Put replaces the whole module set owned by fileID. An empty set clears it.
func (r *Registry) Put(fileID string, modules []Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearLocked(fileID)
	if len(modules) == 0 {
		return
	}

	ids := make([]string, 0, len(modules))
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		// An id owned by another file moves to this one.
		if prev, ok := r.owners[m.ID]; ok && prev != fileID {
			r.files[prev] = remove(r.files[prev], m.ID)
			if len(r.files[prev]) == 0 {
				delete(r.files, prev)
			}
		}
		if !seen[m.ID] {
			seen[m.ID] = true
			ids = append(ids, m.ID)
		}
		r.modules[m.ID] = m.Content
		r.owners[m.ID] = fileID
	}
	r.files[fileID] = ids
}

// Clear removes every module owned by fileID.
func (r *Registry) Clear(fileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked(fileID)
}

func (r *Registry) clearLocked(fileID string) {
	for _, id := range r.files[fileID] {
		delete(r.modules, id)
		delete(r.owners, id)
	}
	delete(r.files, fileID)
}

// Get returns the CSS content of a module.
func (r *Registry) Get(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	content, ok := r.modules[id]
	return content, ok
}

// IDsFor returns the module ids owned by fileID in discovery order.
func (r *Registry) IDsFor(fileID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.files[fileID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Owner returns the file that owns a module.
func (r *Registry) Owner(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.owners[id]
	return file, ok
}

// Files returns the ids of all files that own at least one module, sorted.
func (r *Registry) Files() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	files := make([]string, 0, len(r.files))
	for f := range r.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Len is the number of modules stored.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

func remove(ids []string, id string) []string {
	out := ids[:0:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
