// Package catalog enumerates the available inference providers and their
// models. The catalog is loaded from embedded YAML and injected into the
// services that need it at startup, so tests can substitute their own.
package catalog

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the provider/model catalog.
type Registry struct {
	providers map[string]*Provider
	mu        sync.RWMutex
}

// NewRegistry creates a registry and loads the embedded YAML files.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		providers: make(map[string]*Provider),
	}

	entries, err := configFiles.ReadDir("config")
	if err != nil {
		return nil, fmt.Errorf("read catalog config dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		provider := name[:len(name)-len(".yaml")]
		if err := r.loadProviderFile(provider); err != nil {
			return nil, fmt.Errorf("failed to load %s catalog: %w", provider, err)
		}
	}

	return r, nil
}

// loadProviderFile loads a provider's catalog YAML file
func (r *Registry) loadProviderFile(provider string) error {
	filename := fmt.Sprintf("config/%s.yaml", provider)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var p Provider
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	r.mu.Lock()
	r.providers[provider] = &p
	r.mu.Unlock()

	return nil
}

// Providers returns all registered provider names, sorted.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.providers))
	for provider := range r.providers {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}

// Models returns all models for a provider (ordered as defined in YAML).
func (r *Registry) Models(provider string) ([]Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	return p.Models, nil
}

// Has reports whether the provider offers the model.
func (r *Registry) Has(provider, model string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[provider]
	if !ok {
		return false
	}
	for i := range p.Models {
		if p.Models[i].ID == model {
			return true
		}
	}
	return false
}
