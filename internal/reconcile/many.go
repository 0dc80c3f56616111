package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wardenhq/warden/internal/domain"
)

// ReconcileMany reconciles several independent target groups
// concurrently, at most limit at a time. One target's rules are only
// ever mutated from its own pass, so targets never race each other. A
// fatal error on one target does not stop the others; all such errors
// come back joined, alongside the summaries that were produced.
func (d *Driver) ReconcileMany(ctx context.Context, scope domain.Scope, known []domain.SecurityGroup, intents map[string]domain.Intent, limit int) (map[string]*domain.Summary, error) {
	if limit <= 0 {
		limit = 4
	}

	var (
		mu        sync.Mutex
		errs      []error
		summaries = make(map[string]*domain.Summary, len(intents))
	)

	var g errgroup.Group
	g.SetLimit(limit)
	for target, intent := range intents {
		target, intent := target, intent
		g.Go(func() error {
			summary, err := d.Reconcile(ctx, scope, target, known, intent)
			mu.Lock()
			defer mu.Unlock()
			if summary != nil {
				summaries[target] = summary
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", target, err))
			}
			return nil
		})
	}
	g.Wait()

	return summaries, errors.Join(errs...)
}
