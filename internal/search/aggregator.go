// package search implements multi-provider search aggregation and
// per-field record merging.
//
// The Aggregator fans a query out to every configured provider and collects
// each provider's results independently, so one provider's failure or
// latency never affects another's slot.
package search

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tunedex/tunedex/internal/providers"
	"github.com/tunedex/tunedex/internal/shared"
)

// Aggregator routes searches and detail lookups to registered providers.
type Aggregator struct {
	order     []string
	providers map[string]providers.Provider
	logger    *log.Logger
}

// NewAggregator creates an Aggregator over the given providers. Registration
// order is preserved for deterministic iteration.
func NewAggregator(logger *log.Logger, list ...providers.Provider) *Aggregator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	a := &Aggregator{
		providers: make(map[string]providers.Provider, len(list)),
		logger:    logger,
	}

	for _, p := range list {
		if p == nil {
			continue
		}
		if _, seen := a.providers[p.Name()]; seen {
			continue
		}
		a.order = append(a.order, p.Name())
		a.providers[p.Name()] = p
	}

	return a
}

// Providers returns the registered provider names in registration order.
func (a *Aggregator) Providers() []string {
	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// SearchAll fans the query out to every registered provider concurrently.
// The returned map has one entry per provider; a failed provider's slot is
// an empty list and the failure is logged, never propagated.
func (a *Aggregator) SearchAll(ctx context.Context, query, kind string) map[string][]providers.Result {
	results := make(map[string][]providers.Result, len(a.order))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range a.order {
		provider := a.providers[name]
		wg.Add(1)

		go func(name string, provider providers.Provider) {
			defer wg.Done()

			found, err := provider.Search(ctx, query, kind)
			if err != nil {
				a.logger.Error("provider search failed", "provider", name, "kind", kind, "err", err)
				found = []providers.Result{}
			}
			if found == nil {
				found = []providers.Result{}
			}

			mu.Lock()
			results[name] = found
			mu.Unlock()
		}(name, provider)
	}

	wg.Wait()
	return results
}

// Details routes a detail lookup to exactly one provider by name. An unknown
// provider name or any provider failure yields nil.
func (a *Aggregator) Details(ctx context.Context, provider, id, kind string) *providers.Details {
	p, ok := a.providers[provider]
	if !ok {
		a.logger.Debug("details requested for unregistered provider", "provider", provider)
		return nil
	}

	details, err := p.Details(ctx, id, kind)
	if err != nil {
		a.logger.Error("provider details failed", "provider", provider, "id", id, "kind", kind, "err", err)
		return nil
	}

	return details
}
