// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package generator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/LOPIN6FARRIER/katax-cli/pkg/types"
)

// Registry manages endpoint artifacts. Artifacts are rendered in
// registration order.
type Registry struct {
	mu        sync.RWMutex
	artifacts map[string]Artifact
	order     []string
}

// globalRegistry is the default artifact registry.
var globalRegistry = NewRegistry()

// NewRegistry creates a new artifact registry.
func NewRegistry() *Registry {
	return &Registry{
		artifacts: make(map[string]Artifact),
	}
}

// Register adds an artifact to the registry.
// It returns an error if an artifact of the same kind is already registered.
func (r *Registry) Register(a Artifact) error {
	if a == nil {
		return fmt.Errorf("cannot register nil artifact")
	}

	kind := a.Kind()
	if kind == "" {
		return fmt.Errorf("artifact kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.artifacts[kind]; exists {
		return fmt.Errorf("artifact %q is already registered", kind)
	}

	r.artifacts[kind] = a
	r.order = append(r.order, kind)
	return nil
}

// MustRegister adds an artifact to the registry, panicking on error.
func (r *Registry) MustRegister(a Artifact) {
	if err := r.Register(a); err != nil {
		panic(fmt.Sprintf("failed to register artifact: %v", err))
	}
}

// Get returns an artifact by kind, or nil if not found.
func (r *Registry) Get(kind string) Artifact {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.artifacts[kind]
}

// List returns a sorted list of registered artifact kinds.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, len(r.order))
	copy(kinds, r.order)
	sort.Strings(kinds)
	return kinds
}

// Active returns, in registration order, the artifacts to generate for ep.
func (r *Registry) Active(ep *types.Endpoint, opts Options) []Artifact {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []Artifact
	for _, kind := range r.order {
		a := r.artifacts[kind]
		if c, ok := a.(Conditional); ok && !c.Enabled(ep, opts) {
			continue
		}
		active = append(active, a)
	}
	return active
}

// Has checks if an artifact is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.artifacts[kind]
	return exists
}

// --- Global Registry Functions ---

// Register adds an artifact to the global registry.
func Register(a Artifact) error {
	return globalRegistry.Register(a)
}

// Get returns an artifact by kind from the global registry.
func Get(kind string) Artifact {
	return globalRegistry.Get(kind)
}

// List returns all registered artifact kinds from the global registry.
func List() []string {
	return globalRegistry.List()
}

// Global returns the global registry instance.
func Global() *Registry {
	return globalRegistry
}
