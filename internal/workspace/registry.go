package workspace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultIdleTTL = 30 * time.Minute

// Registry owns one workspace per client id and evicts idle ones.
type Registry struct {
	mu      sync.Mutex
	deps    Deps
	idleTTL time.Duration
	items   map[string]*Workspace
	now     func() time.Time
}

func NewRegistry(deps Deps, idleTTL time.Duration) (*Registry, error) {
	if deps.Catalog == nil || deps.Engine == nil || deps.Store == nil {
		return nil, fmt.Errorf("workspace registry: catalog, engine and store are required")
	}
	if deps.Log == nil {
		return nil, fmt.Errorf("workspace registry: logger is required")
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		deps:    deps,
		idleTTL: idleTTL,
		items:   make(map[string]*Workspace),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// NewClientID mints an id for a client that did not send one.
func NewClientID() string { return uuid.New().String() }

// Get returns the client's workspace, creating it on first use.
func (r *Registry) Get(clientID string) *Workspace {
	clientID = strings.TrimSpace(clientID)
	now := r.now()
	r.mu.Lock()
	w, ok := r.items[clientID]
	if !ok {
		w = newWorkspace(clientID, r.deps)
		r.items[clientID] = w
		r.deps.Log.Debug("workspace created", "client_id", clientID)
	}
	// touched before unlocking so a concurrent Sweep cannot evict it
	w.touch(now)
	r.mu.Unlock()
	return w
}

func (r *Registry) Lookup(clientID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[strings.TrimSpace(clientID)]
	return w, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Sweep evicts workspaces idle for longer than the ttl and reports how many.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)
	r.mu.Lock()
	var stale []*Workspace
	for id, w := range r.items {
		if w.LastSeen().Before(cutoff) {
			stale = append(stale, w)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, w := range stale {
		w.Close()
	}
	if len(stale) > 0 {
		r.deps.Log.Info("evicted idle workspaces", "count", len(stale))
	}
	return len(stale)
}

// Run sweeps periodically until ctx is done, then closes every workspace.
func (r *Registry) Run(ctx context.Context) error {
	interval := r.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Workspace)
	r.mu.Unlock()
	for _, w := range items {
		w.Close()
	}
}
