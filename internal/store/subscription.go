package store

import (
	"context"
	"sync"

	"gestionstock/internal/model"

	"github.com/rs/zerolog/log"
)

// Subscription delivers full snapshots of a collection: one immediately after
// it is opened and one after every change. A slow reader only ever sees the
// latest snapshot. Close must be called to release it.
type Subscription[T any] struct {
	updates chan []T
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// Updates is closed once the subscription has stopped.
func (s *Subscription[T]) Updates() <-chan []T { return s.updates }

// Close unsubscribes and waits for the feed goroutine to exit. Idempotent.
func (s *Subscription[T]) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

// Watch opens a subscription on coll, reloading it with load on every signal
// from n. It stops when ctx is done or Close is called.
func Watch[T any](ctx context.Context, n Notifier, coll Collection, load func(context.Context) ([]T, error)) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		updates: make(chan []T, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	// Listen before the first load so no change between the two is missed.
	changed, stop := n.Listen(coll)

	go func() {
		defer close(sub.done)
		defer close(sub.updates)
		defer stop()

		sub.reload(ctx, coll, load)
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				sub.reload(ctx, coll, load)
			}
		}
	}()
	return sub
}

func (s *Subscription[T]) reload(ctx context.Context, coll Collection, load func(context.Context) ([]T, error)) {
	snap, err := load(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Str("collection", string(coll)).Msg("subscription: reload failed")
		}
		return
	}
	// Single producer: after dropping a stale snapshot the send cannot block.
	select {
	case <-s.updates:
	default:
	}
	s.updates <- snap
}

func WatchProducts(ctx context.Context, st Store) *Subscription[model.Product] {
	return Watch(ctx, st.Notifier(), Products, st.ListProducts)
}

func WatchClients(ctx context.Context, st Store) *Subscription[model.Client] {
	return Watch(ctx, st.Notifier(), Clients, st.ListClients)
}

// WatchSales follows every sale, newest first.
func WatchSales(ctx context.Context, st Store) *Subscription[model.Sale] {
	return Watch(ctx, st.Notifier(), Sales, func(ctx context.Context) ([]model.Sale, error) {
		return st.ListSales(ctx, SaleQuery{})
	})
}
