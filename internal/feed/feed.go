// Package feed models the realtime snapshot subscription: observers
// register callbacks and receive the full current collection after
// every change, never deltas.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"hisab/internal/core"
	applog "hisab/internal/log"
	"hisab/internal/storage"
)

type subscriber struct {
	onSnapshot func([]core.Transaction)
	onError    func(error)
}

// Feed fans full repository snapshots out to subscribers. Deliveries
// are sequential: a Publish runs every callback to completion before
// returning, so no two recomputations interleave.
type Feed struct {
	repo storage.Repository

	mu   sync.Mutex
	subs map[int]subscriber
	next int
}

func New(repo storage.Repository) *Feed {
	return &Feed{
		repo: repo,
		subs: make(map[int]subscriber),
	}
}

// Subscribe registers the callback pair and immediately delivers the
// current snapshot (which may be empty). The returned cancel function
// releases the subscription; it is safe to call more than once.
func (f *Feed) Subscribe(onSnapshot func([]core.Transaction), onError func(error)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = subscriber{onSnapshot: onSnapshot, onError: onError}
	f.mu.Unlock()

	f.deliver(context.Background(), []subscriber{{onSnapshot: onSnapshot, onError: onError}})

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Publish loads a fresh snapshot and delivers it to every subscriber.
// A load failure is reported through each subscriber's error callback;
// retrying is the subscriber's decision.
func (f *Feed) Publish(ctx context.Context) {
	f.mu.Lock()
	subs := make([]subscriber, 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.Unlock()

	if len(subs) == 0 {
		return
	}
	f.deliver(ctx, subs)
}

// Subscribers returns the number of active subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) deliver(ctx context.Context, subs []subscriber) {
	txs, err := f.repo.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Snapshot load failed",
			applog.FieldComponent, applog.ComponentFeed,
			applog.FieldError, err,
			applog.FieldSubscribers, len(subs))
		for _, s := range subs {
			if s.onError != nil {
				s.onError(err)
			}
		}
		return
	}

	for _, s := range subs {
		// Each subscriber gets its own copy; snapshots are read-only
		// from the engine's point of view.
		snapshot := make([]core.Transaction, len(txs))
		copy(snapshot, txs)
		s.onSnapshot(snapshot)
	}
}
