package emotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader loads the classifier artifact of a model.
type Loader interface {
	Load(ctx context.Context, m Model) (Classifier, error)
}

// LoaderFunc adapts a function to [Loader].
type LoaderFunc func(ctx context.Context, m Model) (Classifier, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, m Model) (Classifier, error) { return f(ctx, m) }

// ErrRegistryClosed is wrapped by Acquire after Close.
var ErrRegistryClosed = errors.New("emotion: registry closed")

// Registry caches loaded classifiers by model identifier.
//
// Each classifier is loaded at most once; concurrent first acquisitions of
// the same identifier share one load. Failed loads are not cached. Close
// releases every loaded classifier.
type Registry struct {
	loader Loader
	group  singleflight.Group

	mu     sync.Mutex
	loaded map[ModelID]Classifier
	closed bool
}

// NewRegistry creates a Registry backed by loader.
func NewRegistry(loader Loader) *Registry {
	return &Registry{
		loader: loader,
		loaded: make(map[ModelID]Classifier),
	}
}

// Acquire resolves id and returns its model together with the shared
// classifier, loading it on first use.
//
// Unknown identifiers fail with [KindUnknownModel] without touching the
// loader. Load failures and a closed registry fail with [KindModelLoad].
// If ctx ends while waiting, the returned error wraps ctx.Err() and has no
// kind; the shared load keeps running for other callers.
func (r *Registry) Acquire(ctx context.Context, id ModelID) (Model, Classifier, error) {
	m, err := Resolve(id)
	if err != nil {
		return Model{}, nil, err
	}
	if err := ctx.Err(); err != nil {
		return Model{}, nil, fmt.Errorf("emotion: acquire %s: %w", id, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Model{}, nil, modelError(KindModelLoad, string(id), ErrRegistryClosed)
	}
	if c, ok := r.loaded[id]; ok {
		r.mu.Unlock()
		return m, c, nil
	}
	r.mu.Unlock()

	// The shared load must not die with the first caller's context.
	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(string(id), func() (any, error) {
		return r.load(loadCtx, m)
	})

	select {
	case <-ctx.Done():
		return Model{}, nil, fmt.Errorf("emotion: acquire %s: %w", id, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Model{}, nil, modelError(KindModelLoad, string(id), res.Err)
		}
		return m, res.Val.(Classifier), nil
	}
}

func (r *Registry) load(ctx context.Context, m Model) (Classifier, error) {
	r.mu.Lock()
	if c, ok := r.loaded[m.ID]; ok {
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	start := time.Now()
	c, err := r.loader.Load(ctx, m)
	if err != nil {
		slog.Warn("emotion: classifier load failed", "model", m.ID, "error", err)
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("loader returned no classifier for %s", m.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		c.Close()
		return nil, ErrRegistryClosed
	}
	r.loaded[m.ID] = c
	slog.Debug("emotion: classifier loaded",
		"model", m.ID,
		"scheme", m.Scheme.Name(),
		"elapsed", time.Since(start))
	return c, nil
}

// Loaded returns the identifiers with a loaded classifier, sorted.
func (r *Registry) Loaded() []ModelID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]ModelID, 0, len(r.loaded))
	for id := range r.loaded {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close releases all loaded classifiers. It is safe to call more than once.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	loaded := r.loaded
	r.loaded = make(map[ModelID]Classifier)
	r.mu.Unlock()

	var errs []error
	for id, c := range loaded {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("emotion: close %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
