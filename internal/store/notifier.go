package store

import (
	"context"
	"sync"
)

// Notifier fans out "collection changed" signals. Signals carry no payload;
// listeners reload the collection they care about.
type Notifier interface {
	Publish(ctx context.Context, coll Collection)
	// Listen returns a channel that receives at least one value after every
	// Publish on coll, and a function that stops listening.
	Listen(coll Collection) (<-chan struct{}, func())
}

// LocalNotifier is an in-process Notifier.
type LocalNotifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[Collection]map[int]chan struct{}
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{listeners: make(map[Collection]map[int]chan struct{})}
}

func (n *LocalNotifier) Publish(_ context.Context, coll Collection) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.listeners[coll] {
		signal(ch)
	}
}

func (n *LocalNotifier) Listen(coll Collection) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan struct{}, 1)
	if n.listeners[coll] == nil {
		n.listeners[coll] = make(map[int]chan struct{})
	}
	n.listeners[coll][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.listeners[coll], id)
			n.mu.Unlock()
		})
	}
}

// signal performs a non-blocking send; a pending signal already covers this one.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
