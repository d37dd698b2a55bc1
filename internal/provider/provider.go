// Package provider defines the contract every upstream data source satisfies.
// The merge engine consumes only this shape; it knows nothing about any
// provider's wire format. Site-specific scrapers and API clients implement
// Provider and yield raw games lazily.
package provider

import (
	"context"
	"errors"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

// Done is returned by GameIterator.Next when the sequence is exhausted.
var Done = errors.New("provider: no more games")

// GameIterator is a lazy sequence of raw games. Nothing is fetched until the
// consumer asks for the next item; consumption order is deterministic.
type GameIterator interface {
	// Next returns the next raw game, Done when exhausted, or the error that
	// ended the stream. After a non-nil error the iterator must not be used.
	Next(ctx context.Context) (*models.Game, error)
}

// Provider is one independent upstream origin of raw game records.
type Provider interface {
	// Name identifies the provider in logs and progress reporting.
	Name() string

	// Season returns a lazy stream of every raw game the provider knows for
	// one league season. Implementations fetch on demand, not up front.
	Season(ctx context.Context, league models.League, year int) (GameIterator, error)
}

// Registry holds providers in registration order. Position doubles as merge
// priority: lower index wins first-non-null conflicts.
type Registry struct {
	providers []Provider
}

// NewRegistry creates a registry from providers in priority order.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// Register appends a provider at the lowest priority.
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// Providers returns the registered providers in priority order.
func (r *Registry) Providers() []Provider {
	return r.providers
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.providers)
}

// SliceIterator adapts an in-memory slice to a GameIterator. Used by static
// providers and tests.
type SliceIterator struct {
	games []*models.Game
	pos   int
}

// NewSliceIterator creates an iterator over games.
func NewSliceIterator(games []*models.Game) *SliceIterator {
	return &SliceIterator{games: games}
}

// Next implements GameIterator.
func (it *SliceIterator) Next(ctx context.Context) (*models.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.pos >= len(it.games) {
		return nil, Done
	}
	g := it.games[it.pos]
	it.pos++
	return g, nil
}
