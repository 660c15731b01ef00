package providers

import (
	"sync"

	"github.com/graphrun/graphrun/internal/pkg/errors"
)

// TextFactory constructs a TextProvider for a provider id on first use.
type TextFactory func() (TextProvider, error)

// ImageFactory constructs an ImageProvider for a provider id on first use.
type ImageFactory func() (ImageProvider, error)

// TextRegistry lazily constructs and caches TextProvider singletons by id.
// Unknown ids surface as errors.ProviderUnknown.
type TextRegistry struct {
	mu        sync.Mutex
	factories map[string]TextFactory
	instances map[string]TextProvider
}

// NewTextRegistry creates an empty text provider registry.
func NewTextRegistry() *TextRegistry {
	return &TextRegistry{
		factories: make(map[string]TextFactory),
		instances: make(map[string]TextProvider),
	}
}

// Register wires a factory for a provider id. Idempotent: re-registering an
// id replaces the factory, and evicts any already-constructed instance.
func (r *TextRegistry) Register(providerID string, factory TextFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[providerID] = factory
	delete(r.instances, providerID)
}

// Get returns the shared TextProvider for providerID, constructing it on
// first use.
func (r *TextRegistry) Get(providerID string) (TextProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.instances[providerID]; ok {
		return p, nil
	}
	factory, ok := r.factories[providerID]
	if !ok {
		return nil, errors.ProviderUnknown(providerID)
	}
	p, err := factory()
	if err != nil {
		return nil, err
	}
	r.instances[providerID] = p
	return p, nil
}

// ImageRegistry lazily constructs and caches ImageProvider singletons by id.
type ImageRegistry struct {
	mu        sync.Mutex
	factories map[string]ImageFactory
	instances map[string]ImageProvider
}

// NewImageRegistry creates an empty image provider registry.
func NewImageRegistry() *ImageRegistry {
	return &ImageRegistry{
		factories: make(map[string]ImageFactory),
		instances: make(map[string]ImageProvider),
	}
}

// Register wires a factory for a provider id.
func (r *ImageRegistry) Register(providerID string, factory ImageFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[providerID] = factory
	delete(r.instances, providerID)
}

// Get returns the shared ImageProvider for providerID, constructing it on
// first use.
func (r *ImageRegistry) Get(providerID string) (ImageProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.instances[providerID]; ok {
		return p, nil
	}
	factory, ok := r.factories[providerID]
	if !ok {
		return nil, errors.ProviderUnknown(providerID)
	}
	p, err := factory()
	if err != nil {
		return nil, err
	}
	r.instances[providerID] = p
	return p, nil
}
