// Package transformer maps batch types to the functions that fan a master configuration out
// into job-configuration payloads.
package transformer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
)

// Transformer turns one master configuration into the payloads of the jobs of a batch.
// It must not mutate its input.
type Transformer func(configuration model.Payload) ([]model.Payload, error)

var (
	// ErrUnknownBatchType is returned for a batch type nobody registered.
	ErrUnknownBatchType = errors.New("unknown batch type")
	// ErrDuplicateBatchType is returned when a batch type is registered twice.
	ErrDuplicateBatchType = errors.New("batch type already registered")
)

// Registry holds the transformers keyed by batch type. The zero value is not usable; call NewRegistry.
type Registry struct {
	mu           sync.RWMutex
	transformers map[string]Transformer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{transformers: make(map[string]Transformer)}
}

// Register binds fn to batchType.
func (r *Registry) Register(batchType string, fn Transformer) error {
	if batchType == "" {
		return errors.New("batch type must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("transformer for batch type '%s' is nil", batchType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transformers[batchType]; exists {
		return fmt.Errorf("%w: '%s'", ErrDuplicateBatchType, batchType)
	}
	r.transformers[batchType] = fn
	return nil
}

// MustRegister is like Register but panics on error. Intended for startup wiring.
func (r *Registry) MustRegister(batchType string, fn Transformer) {
	if err := r.Register(batchType, fn); err != nil {
		panic(err)
	}
}

// Has reports whether batchType is registered.
func (r *Registry) Has(batchType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.transformers[batchType]
	return ok
}

// BatchTypes returns the registered batch types in lexical order.
func (r *Registry) BatchTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.transformers))
	for t := range r.transformers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// JobConfigurations runs the transformer of batchType against configuration.
func (r *Registry) JobConfigurations(batchType string, configuration model.Payload) ([]model.Payload, error) {
	r.mu.RLock()
	fn, ok := r.transformers[batchType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: '%s' (registered: %v)", ErrUnknownBatchType, batchType, r.BatchTypes())
	}

	payloads, err := fn(configuration)
	if err != nil {
		return nil, fmt.Errorf("transformer '%s' failed: %w", batchType, err)
	}
	return payloads, nil
}
