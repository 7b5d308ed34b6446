package app

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// MultiObserver fans lifecycle events out to several observers concurrently.
// Every observer is called; their errors are combined.
type MultiObserver struct {
	observers []domain.AssetObserver
}

// NewMultiObserver drops nil observers. It returns nil when none remain so
// the manager skips notification entirely.
func NewMultiObserver(observers ...domain.AssetObserver) domain.AssetObserver {
	var kept []domain.AssetObserver
	for _, o := range observers {
		if o != nil {
			kept = append(kept, o)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &MultiObserver{observers: kept}
}

// OnStored notifies every observer of a stored asset
func (m *MultiObserver) OnStored(ctx context.Context, event domain.AssetEvent) error {
	return m.fanOut(func(o domain.AssetObserver) error {
		return o.OnStored(ctx, event)
	})
}

// OnRemoved notifies every observer of a removed asset
func (m *MultiObserver) OnRemoved(ctx context.Context, event domain.AssetEvent) error {
	return m.fanOut(func(o domain.AssetObserver) error {
		return o.OnRemoved(ctx, event)
	})
}

func (m *MultiObserver) fanOut(call func(domain.AssetObserver) error) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	for _, o := range m.observers {
		o := o
		g.Go(func() error {
			if err := call(o); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
