package store

import (
	"context"
	"sync"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

// Mutator is a DocumentStore that can apply a read-modify-write cycle.
type Mutator interface {
	DocumentStore
	Update(ctx context.Context, fn func(doc *domain.Document) error) (domain.Document, error)
}

// Guarded serialises document mutations inside one process. Writers in other
// processes are still last-writer-wins.
type Guarded struct {
	mu    sync.Mutex
	inner DocumentStore
}

func NewGuarded(inner DocumentStore) *Guarded {
	return &Guarded{inner: inner}
}

func (g *Guarded) Read(ctx context.Context) (domain.Document, error) {
	return g.inner.Read(ctx)
}

func (g *Guarded) Write(ctx context.Context, doc domain.Document) (domain.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Write(ctx, doc)
}

// Update reads the document, applies fn and writes the result. Nothing is
// written when fn returns an error.
func (g *Guarded) Update(ctx context.Context, fn func(doc *domain.Document) error) (domain.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, err := g.inner.Read(ctx)
	if err != nil {
		return domain.Document{}, err
	}
	if err := fn(&doc); err != nil {
		return domain.Document{}, err
	}
	return g.inner.Write(ctx, doc)
}
