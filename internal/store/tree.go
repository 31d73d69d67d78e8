package store

import (
	"encoding/json"
	"fmt"
)

// normalizeValue gives any Go value its JSON tree shape (objects become
// map[string]any, numbers float64) and drops nil leaves and empty objects.
func normalizeValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	blob, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(blob, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return prune(out), nil
}

func prune(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, child := range m {
		pv := prune(child)
		if pv == nil {
			delete(m, k)
			continue
		}
		m[k] = pv
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = clone(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = clone(child)
		}
		return out
	default:
		return v
	}
}

func getAt(node any, segs []string) any {
	cur := node
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// setAt writes v below node; nil removes. Parents emptied by a removal are dropped.
func setAt(node map[string]any, segs []string, v any) {
	key := segs[0]
	if len(segs) == 1 {
		if v == nil {
			delete(node, key)
		} else {
			node[key] = v
		}
		return
	}
	child, ok := node[key].(map[string]any)
	if !ok {
		if v == nil {
			return
		}
		child = map[string]any{}
		node[key] = child
	}
	setAt(child, segs[1:], v)
	if len(child) == 0 {
		delete(node, key)
	}
}
