package transport

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-service-dispatch/core"
)

// Adapter is a core.Transport that can be registered by kind.
type Adapter interface {
	core.Transport
	Kind() string
}

type AdapterFactory func(config core.TransportConfig) (Adapter, error)

type Registry struct {
	mu        sync.RWMutex
	adapters  map[string]Adapter
	factories map[string]AdapterFactory
}

func NewRegistry() *Registry {
	return &Registry{
		adapters:  map[string]Adapter{},
		factories: map[string]AdapterFactory{},
	}
}

// NewDefaultRegistry registers a factory for the rest kind backed by
// http.DefaultClient.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.RegisterFactory(KindREST, RESTFactory(nil))
	return registry
}

func RESTFactory(client HTTPDoer) AdapterFactory {
	return func(config core.TransportConfig) (Adapter, error) {
		if client == nil {
			return NewRESTAdapterFromConfig(http.DefaultClient, config), nil
		}
		return NewRESTAdapterFromConfig(client, config), nil
	}
}

func (r *Registry) Register(adapter Adapter) error {
	if r == nil {
		return registryError("transport: registry is nil", goerrors.CategoryInternal, nil)
	}
	if adapter == nil {
		return registryError("transport: adapter is nil", goerrors.CategoryBadInput, nil)
	}
	kind := normalizeKind(adapter.Kind())
	if kind == "" {
		return registryError("transport: adapter kind is required", goerrors.CategoryBadInput, nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[kind]; exists {
		return registryError("transport: adapter kind already registered", goerrors.CategoryBadInput, map[string]any{"kind": kind})
	}
	r.adapters[kind] = adapter
	return nil
}

func (r *Registry) RegisterFactory(kind string, factory AdapterFactory) error {
	if r == nil {
		return registryError("transport: registry is nil", goerrors.CategoryInternal, nil)
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return registryError("transport: adapter kind is required", goerrors.CategoryBadInput, nil)
	}
	if factory == nil {
		return registryError("transport: adapter factory is nil", goerrors.CategoryBadInput, map[string]any{"kind": kind})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return registryError("transport: adapter factory kind already registered", goerrors.CategoryBadInput, map[string]any{"kind": kind})
	}
	r.factories[kind] = factory
	return nil
}

// Build returns the adapter registered for kind, or builds one from its
// factory. Registered adapters take precedence and ignore config.
func (r *Registry) Build(kind string, config core.TransportConfig) (Adapter, error) {
	if r == nil {
		return nil, registryError("transport: registry is nil", goerrors.CategoryInternal, nil)
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return nil, registryError("transport: adapter kind is required", goerrors.CategoryBadInput, nil)
	}

	r.mu.RLock()
	adapter, ok := r.adapters[kind]
	factory := r.factories[kind]
	r.mu.RUnlock()
	if ok {
		return adapter, nil
	}
	if factory == nil {
		return nil, registryError("transport: adapter kind not registered", goerrors.CategoryNotFound, map[string]any{"kind": kind})
	}
	built, err := factory(cloneConfig(config))
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, registryError("transport: factory returned nil adapter", goerrors.CategoryInternal, map[string]any{"kind": kind})
	}
	return built, nil
}

func (r *Registry) Get(kind string) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	kind = normalizeKind(kind)
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[kind]
	return adapter, ok
}

func (r *Registry) List() []Adapter {
	if r == nil {
		return []Adapter{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.adapters))
	for kind := range r.adapters {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	result := make([]Adapter, 0, len(kinds))
	for _, kind := range kinds {
		result = append(result, r.adapters[kind])
	}
	return result
}

// Kinds lists every kind that can be built, from adapters or factories.
func (r *Registry) Kinds() []string {
	if r == nil {
		return []string{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.adapters)+len(r.factories))
	for kind := range r.adapters {
		seen[kind] = struct{}{}
	}
	for kind := range r.factories {
		seen[kind] = struct{}{}
	}
	kinds := make([]string, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func registryError(message string, category goerrors.Category, metadata map[string]any) error {
	return core.NewServiceError(message, category, metadata)
}

func normalizeKind(kind string) string {
	return strings.TrimSpace(strings.ToLower(kind))
}

func cloneConfig(config core.TransportConfig) core.TransportConfig {
	headers := make(map[string]string, len(config.DefaultHeaders))
	for key, value := range config.DefaultHeaders {
		headers[key] = value
	}
	config.DefaultHeaders = headers
	return config
}
