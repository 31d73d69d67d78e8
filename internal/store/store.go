// Package store is the path-addressed document store the sales records live in.
// Values are JSON-shaped trees; every node is reachable by a "/"-separated path
// such as "months/Septiembre_2025/sales/3001234567".
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

var ErrInvalidPath = errors.New("invalid store path")

// Listener receives the full value at the subscribed path.
type Listener func(Snapshot)

type Store interface {
	Get(ctx context.Context, path string) (Snapshot, error)
	// Set overwrites the node at path. A nil value or an empty map removes it.
	Set(ctx context.Context, path string, value any) error
	// Update merges the named children into the node at path; other children stay.
	Update(ctx context.Context, path string, fields map[string]any) error
	Remove(ctx context.Context, path string) error
	// Push stores value under a new time-ordered key below path and returns the key.
	Push(ctx context.Context, path string, value any) (string, error)
	// Subscribe calls fn with the current value and again after every write that
	// touches path, one of its ancestors or one of its descendants.
	Subscribe(ctx context.Context, path string, fn Listener) (func(), error)
	Close() error
}

type Snapshot struct {
	Path  string
	value any
}

func NewSnapshot(path string, value any) Snapshot {
	return Snapshot{Path: path, value: value}
}

func (s Snapshot) Exists() bool { return s.value != nil }

func (s Snapshot) Val() any { return s.value }

func (s Snapshot) Key() string {
	if i := strings.LastIndex(s.Path, "/"); i >= 0 {
		return s.Path[i+1:]
	}
	return s.Path
}

// Map returns the node as an object, or nil when it is missing or a scalar.
func (s Snapshot) Map() map[string]any {
	m, _ := s.value.(map[string]any)
	return m
}

func (s Snapshot) Child(key string) Snapshot {
	m := s.Map()
	if m == nil {
		return Snapshot{Path: s.Path + "/" + key}
	}
	return Snapshot{Path: s.Path + "/" + key, value: m[key]}
}

// Children lists object children ordered by key.
func (s Snapshot) Children() []Snapshot {
	m := s.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Snapshot, 0, len(keys))
	for _, k := range keys {
		out = append(out, Snapshot{Path: s.Path + "/" + k, value: m[k]})
	}
	return out
}

// Decode converts the node into dst through its JSON form.
func (s Snapshot) Decode(dst any) error {
	blob, err := json.Marshal(s.value)
	if err != nil {
		return err
	}
	return json.Unmarshal(blob, dst)
}
