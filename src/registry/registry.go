package registry

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/models"
)

// Registry keys for the process-wide model set. Translation models use
// models.TranslationPair.Key() ("translate:<from>-<to>").
const (
	KeyEmbed = "embed"
	KeyGen   = "gen"
)

// Loader performs the slow, blocking acquisition of a model. First
// acquisition may incur a network fetch of model weights.
type Loader func(ctx context.Context) (any, error)

// ModelHandle wraps an initialized model. Handles are owned by the
// Registry, shared read-only, and safe for concurrent inference use.
type ModelHandle struct {
	key   string
	value any
}

func (h *ModelHandle) Key() string { return h.key }

// Value returns the underlying model client. Callers type-assert to the
// concrete client they registered the loader for.
func (h *ModelHandle) Value() any { return h.value }

// Registry holds at most one instance of each model for the process
// lifetime and initializes each on first use. Concurrent callers for the
// same uninitialized model block behind a per-key lock; callers for
// different models proceed independently.
type Registry struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	handles map[string]*ModelHandle
	loaders map[string]Loader
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Registry {
	return &Registry{
		locks:   make(map[string]*sync.Mutex),
		handles: make(map[string]*ModelHandle),
		loaders: make(map[string]Loader),
		logger:  logger,
	}
}

// Register installs the loader for a model key. Must be called before the
// first GetOrLoad for that key; loaders are fixed at startup.
func (r *Registry) Register(key string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[key] = loader
	r.locks[key] = &sync.Mutex{}
}

// GetOrLoad returns the handle for key, loading it on first use. A load
// failure is returned as ErrModelUnavailable and is not cached: the next
// call retries the load.
func (r *Registry) GetOrLoad(ctx context.Context, key string) (*ModelHandle, error) {
	r.mu.Lock()
	if h, ok := r.handles[key]; ok {
		r.mu.Unlock()
		return h, nil
	}
	loader, ok := r.loaders[key]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: no loader registered for %q", models.ErrModelUnavailable, key)
	}
	lock := r.locks[key]
	r.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// Re-check: another caller may have finished the load while we
	// waited on the per-key lock.
	r.mu.Lock()
	if h, ok := r.handles[key]; ok {
		r.mu.Unlock()
		return h, nil
	}
	r.mu.Unlock()

	r.logger.Info("loading model", zap.String("model", key))
	value, err := loader(ctx)
	if err != nil {
		r.logger.Error("model load failed", zap.String("model", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", models.ErrModelUnavailable, key, err)
	}

	h := &ModelHandle{key: key, value: value}
	r.mu.Lock()
	r.handles[key] = h
	r.mu.Unlock()

	r.logger.Info("model ready", zap.String("model", key))
	return h, nil
}

// Loaded reports whether a handle for key is already initialized.
func (r *Registry) Loaded(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[key]
	return ok
}
