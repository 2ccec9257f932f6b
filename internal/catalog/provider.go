// file: internal/catalog/provider.go
// version: 1.0.0
// guid: e2b7049c-6d13-4f8a-91c5-3a0f8e6d2b71

package catalog

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Provider serves the current catalog snapshot and swaps it on reload.
// Readers never block; a failed reload keeps the previous snapshot.
type Provider struct {
	store   Store
	current atomic.Pointer[Catalog]

	mu        sync.Mutex
	listeners []func(*Catalog)
}

// NewProvider loads the initial snapshot from store.
func NewProvider(store Store) (*Provider, error) {
	p := &Provider{store: store}
	if _, err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewStaticProvider serves a fixed catalog. Reload is a no-op.
func NewStaticProvider(c *Catalog) *Provider {
	p := &Provider{}
	p.current.Store(c)
	return p
}

// Current returns the active snapshot.
func (p *Provider) Current() *Catalog {
	return p.current.Load()
}

// Store returns the backing store, nil for static providers.
func (p *Provider) Store() Store {
	return p.store
}

// OnReload registers fn to run after every successful reload.
func (p *Provider) OnReload(fn func(*Catalog)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Reload re-reads the store and publishes the new snapshot.
func (p *Provider) Reload() (*Catalog, error) {
	if p.store == nil {
		return p.Current(), nil
	}
	c, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to reload catalog from %s: %w", p.store.Location(), err)
	}
	p.current.Store(c)

	p.mu.Lock()
	listeners := append([]func(*Catalog){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(c)
	}
	return c, nil
}
