package store

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Memory keeps the whole tree in process. Used by tests and STORE_BACKEND=memory.
type Memory struct {
	mu   sync.RWMutex
	root map[string]any
	*broker
}

func NewMemory() *Memory {
	return &Memory{root: map[string]any{}, broker: newBroker()}
}

func (m *Memory) Get(_ context.Context, path string) (Snapshot, error) {
	segs, err := Segments(path)
	if err != nil {
		return Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{Path: Join(segs...), value: clone(getAt(m.root, segs))}, nil
}

func (m *Memory) Set(ctx context.Context, path string, value any) error {
	segs, err := Segments(path)
	if err != nil {
		return err
	}
	norm, err := normalizeValue(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	setAt(m.root, segs, norm)
	m.mu.Unlock()

	m.notify(ctx, m, Join(segs...))
	return nil
}

func (m *Memory) Update(ctx context.Context, path string, fields map[string]any) error {
	segs, err := Segments(path)
	if err != nil {
		return err
	}
	type write struct {
		segs  []string
		value any
	}
	writes := make([]write, 0, len(fields))
	for key, value := range fields {
		childSegs, err := Segments(Join(append(append([]string{}, segs...), key)...))
		if err != nil {
			return err
		}
		norm, err := normalizeValue(value)
		if err != nil {
			return err
		}
		writes = append(writes, write{segs: childSegs, value: norm})
	}

	m.mu.Lock()
	for _, w := range writes {
		setAt(m.root, w.segs, w.value)
	}
	m.mu.Unlock()

	m.notify(ctx, m, Join(segs...))
	return nil
}

func (m *Memory) Remove(ctx context.Context, path string) error {
	return m.Set(ctx, path, nil)
}

func (m *Memory) Push(ctx context.Context, path string, value any) (string, error) {
	key := ulid.Make().String()
	if err := m.Set(ctx, Join(path, key), value); err != nil {
		return "", err
	}
	return key, nil
}

func (m *Memory) Subscribe(ctx context.Context, path string, fn Listener) (func(), error) {
	return m.subscribe(ctx, m, path, fn)
}

func (m *Memory) Close() error { return nil }
