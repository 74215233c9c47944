// Package registry keeps the authoritative set of currently blocked source
// addresses, mirrored to a flat JSON file so blocks survive a restart.
package registry

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Registry is safe for concurrent use. Every mutation rewrites the whole
// mirror file, so the file always matches the in-memory set as of the last
// successful write. A failed write is logged and the in-memory set stays
// authoritative until the process exits.
type Registry struct {
	mu    sync.Mutex
	addrs map[string]struct{}
	path  string
}

func New(path string) *Registry {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("registry: create state dir: %v", err)
		}
	}
	return &Registry{
		addrs: make(map[string]struct{}),
		path:  path,
	}
}

// Load reads the mirror file and restores membership. A missing, unreadable
// or malformed file yields an empty registry; startup never fails on state.
// It returns the restored addresses.
func (r *Registry) Load() []string {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("registry: read %s: %v", r.path, err)
		}
		return nil
	}

	var addrs []string
	if err := json.Unmarshal(data, &addrs); err != nil {
		log.Printf("registry: malformed state in %s, starting empty: %v", r.path, err)
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range addrs {
		if a != "" {
			r.addrs[a] = struct{}{}
		}
	}
	return r.snapshotLocked()
}

// Contains reports whether addr is currently blocked.
func (r *Registry) Contains(addr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.addrs[addr]
	return ok
}

// Add inserts addr and rewrites the mirror file.
func (r *Registry) Add(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addrs[addr] = struct{}{}
	r.persistLocked()
}

// Remove deletes addr if present and rewrites the mirror file. Removing an
// absent address is a no-op and does not touch the file.
func (r *Registry) Remove(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.addrs[addr]; !ok {
		return
	}
	delete(r.addrs, addr)
	r.persistLocked()
}

// Snapshot returns a sorted copy of the blocked set for display callers.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Len returns the number of currently blocked addresses.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.addrs)
}

func (r *Registry) snapshotLocked() []string {
	out := make([]string, 0, len(r.addrs))
	for a := range r.addrs {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// persistLocked writes the whole set as a JSON array. Callers hold r.mu.
func (r *Registry) persistLocked() {
	data, err := json.Marshal(r.snapshotLocked())
	if err != nil {
		log.Printf("registry: marshal state: %v", err)
		return
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		log.Printf("registry: write %s: %v", r.path, err)
	}
}
