// Package inbox records fetched e-mails and processing runs in the document store.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"simventas/internal"
	"simventas/internal/store"
)

const (
	messagesRoot = "inbox"
	runsRoot     = "processing_runs"
)

const (
	StatusFetched   = "fetched"
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

var ErrNotFound = errors.New("inbox message not found")

// Run is the summary of processing one message.
type Run struct {
	TraceID    string         `json:"traceId"`
	Hash       string         `json:"hash"`
	Operation  string         `json:"operation,omitempty"`
	Month      string         `json:"month,omitempty"`
	Counts     map[string]int `json:"counts"`
	Errors     []string       `json:"errors,omitempty"`
	DurationMs int64          `json:"durationMs"`
	CreatedAt  string         `json:"createdAt"`
}

type Repo struct {
	store store.Store
	now   func() time.Time
}

func New(st store.Store) *Repo {
	return &Repo{store: st, now: time.Now}
}

// Upsert stores the metadata of a fetched message keyed by its raw hash.
// A message seen before keeps its processing status.
func (r *Repo) Upsert(ctx context.Context, msg internal.InboxMessage) (internal.InboxMessage, error) {
	if err := store.ValidKey(msg.Hash); err != nil {
		return internal.InboxMessage{}, fmt.Errorf("message hash: %w", err)
	}
	existing, found, err := r.Get(ctx, msg.Hash)
	if err != nil {
		return internal.InboxMessage{}, err
	}
	if found && existing.Status != "" {
		msg.Status = existing.Status
	}
	if msg.Status == "" {
		msg.Status = StatusFetched
	}
	msg.UpdatedAt = r.now().UTC().Format(time.RFC3339)
	if err := r.store.Set(ctx, store.Join(messagesRoot, msg.Hash), msg); err != nil {
		return internal.InboxMessage{}, err
	}
	return msg, nil
}

func (r *Repo) Get(ctx context.Context, hash string) (internal.InboxMessage, bool, error) {
	snap, err := r.store.Get(ctx, store.Join(messagesRoot, hash))
	if err != nil || !snap.Exists() {
		return internal.InboxMessage{}, false, err
	}
	var msg internal.InboxMessage
	if err := snap.Decode(&msg); err != nil {
		return internal.InboxMessage{}, false, err
	}
	msg.Hash = hash
	return msg, true, nil
}

// ByMessageID finds a message by its provider id. An empty provider matches any.
func (r *Repo) ByMessageID(ctx context.Context, provider, messageID string) (internal.InboxMessage, error) {
	all, err := r.list(ctx)
	if err != nil {
		return internal.InboxMessage{}, err
	}
	for _, m := range all {
		if (provider == "" || m.Provider == provider) && m.MessageID == messageID {
			return m, nil
		}
	}
	return internal.InboxMessage{}, fmt.Errorf("%w: %s %s", ErrNotFound, provider, messageID)
}

// ListByStatus returns up to limit messages in status, oldest first.
func (r *Repo) ListByStatus(ctx context.Context, status string, limit int) ([]internal.InboxMessage, error) {
	all, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]internal.InboxMessage, 0, len(all))
	for _, m := range all {
		if m.Status == status {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, hash, status string) error {
	return r.store.Update(ctx, store.Join(messagesRoot, hash), map[string]any{
		"status":    status,
		"updatedAt": r.now().UTC().Format(time.RFC3339),
	})
}

func (r *Repo) InsertRun(ctx context.Context, run Run) error {
	if run.CreatedAt == "" {
		run.CreatedAt = r.now().UTC().Format(time.RFC3339)
	}
	_, err := r.store.Push(ctx, runsRoot, run)
	return err
}

func (r *Repo) Runs(ctx context.Context) ([]Run, error) {
	snap, err := r.store.Get(ctx, runsRoot)
	if err != nil {
		return nil, err
	}
	var out []Run
	for _, c := range snap.Children() {
		var run Run
		if err := c.Decode(&run); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func (r *Repo) list(ctx context.Context) ([]internal.InboxMessage, error) {
	snap, err := r.store.Get(ctx, messagesRoot)
	if err != nil {
		return nil, err
	}
	out := make([]internal.InboxMessage, 0)
	for _, c := range snap.Children() {
		var m internal.InboxMessage
		if err := c.Decode(&m); err != nil {
			return nil, err
		}
		m.Hash = c.Key()
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReceivedAt < out[j].ReceivedAt })
	return out, nil
}
