// Package activity keeps the user directory and the append-only audit log
// written after every sales operation.
package activity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"simventas/internal"
	"simventas/internal/store"
)

const (
	usersRoot = "users"
	logsRoot  = "user_activity_logs"
)

type actorKey struct{}

// WithActor attaches the acting user id to ctx.
func WithActor(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, actorKey{}, uid)
}

func ActorFrom(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(actorKey{}).(string)
	return uid, ok && uid != ""
}

type Log struct {
	store store.Store
	now   func() time.Time
}

func New(st store.Store) *Log {
	return &Log{store: st, now: time.Now}
}

// Record appends entry under the actor of ctx. Without an actor it does nothing.
func (l *Log) Record(ctx context.Context, entry internal.ActivityEntry) error {
	uid, ok := ActorFrom(ctx)
	if !ok {
		return nil
	}
	if err := store.ValidKey(uid); err != nil {
		return fmt.Errorf("actor id: %w", err)
	}
	now := l.now().UTC()
	if entry.Timestamp == "" {
		entry.Timestamp = now.Format(time.RFC3339)
	}
	if _, err := l.store.Push(ctx, store.Join(logsRoot, uid, now.Format("2006_01")), entry); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}

	snap, err := l.store.Get(ctx, store.Join(usersRoot, uid))
	if err != nil {
		return err
	}
	if snap.Exists() {
		return l.store.Update(ctx, store.Join(usersRoot, uid), map[string]any{"lastActive": now.Format(time.RFC3339)})
	}
	return nil
}

// Entries lists the log of uid for a yyyy_MM period, oldest first.
func (l *Log) Entries(ctx context.Context, uid, period string) ([]internal.ActivityEntry, error) {
	snap, err := l.store.Get(ctx, store.Join(logsRoot, uid, period))
	if err != nil {
		return nil, err
	}
	children := snap.Children()
	out := make([]internal.ActivityEntry, 0, len(children))
	for _, c := range children {
		var e internal.ActivityEntry
		if err := c.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (l *Log) SaveUser(ctx context.Context, u internal.User) error {
	if err := store.ValidKey(u.UID); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	switch u.Role {
	case internal.RoleAdmin, internal.RoleUser:
	default:
		return fmt.Errorf("unknown role %q", u.Role)
	}
	if u.CreatedAt == "" {
		u.CreatedAt = l.now().UTC().Format(time.RFC3339)
	}
	return l.store.Set(ctx, store.Join(usersRoot, u.UID), u)
}

func (l *Log) User(ctx context.Context, uid string) (internal.User, bool, error) {
	if err := store.ValidKey(uid); err != nil {
		return internal.User{}, false, nil
	}
	snap, err := l.store.Get(ctx, store.Join(usersRoot, uid))
	if err != nil || !snap.Exists() {
		return internal.User{}, false, err
	}
	var u internal.User
	if err := snap.Decode(&u); err != nil {
		return internal.User{}, false, err
	}
	u.UID = uid
	return u, true, nil
}

func (l *Log) Users(ctx context.Context) ([]internal.User, error) {
	snap, err := l.store.Get(ctx, usersRoot)
	if err != nil {
		return nil, err
	}
	var out []internal.User
	for _, c := range snap.Children() {
		var u internal.User
		if err := c.Decode(&u); err != nil {
			return nil, err
		}
		u.UID = c.Key()
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
