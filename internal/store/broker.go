package store

import (
	"context"
	"sync"
)

type subscription struct {
	path string
	fn   Listener
}

// broker tracks listeners and tells a backend which of them a write concerns.
type broker struct {
	mu   sync.Mutex
	next int
	subs map[int]subscription
}

func newBroker() *broker {
	return &broker{subs: map[int]subscription{}}
}

func (b *broker) add(path string, fn Listener) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs[b.next] = subscription{path: path, fn: fn}
	return b.next
}

func (b *broker) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

func (b *broker) affected(written string) []subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]subscription, 0)
	for _, sub := range b.subs {
		if related(sub.path, written) {
			out = append(out, sub)
		}
	}
	return out
}

// notify re-reads every affected subscription path and delivers its full value.
func (b *broker) notify(ctx context.Context, s Store, written string) {
	for _, sub := range b.affected(written) {
		snap, err := s.Get(ctx, sub.path)
		if err != nil {
			continue
		}
		sub.fn(snap)
	}
}

func (b *broker) subscribe(ctx context.Context, s Store, path string, fn Listener) (func(), error) {
	clean, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	id := b.add(clean, fn)
	snap, err := s.Get(ctx, clean)
	if err != nil {
		b.remove(id)
		return nil, err
	}
	fn(snap)
	var once sync.Once
	return func() { once.Do(func() { b.remove(id) }) }, nil
}
