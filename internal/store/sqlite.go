package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLite persists the tree as one row per leaf: the row key is the full path
// and the value its JSON encoding. A subtree is the range [p+"/", p+"0").
type SQLite struct {
	conn *sql.DB
	*broker
}

func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &SQLite{conn: conn, broker: newBroker()}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *SQLite) Close() error {
	return d.conn.Close()
}

func (d *SQLite) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS nodes (
  path TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := d.conn.Exec(schema)
	return err
}

func (d *SQLite) Get(ctx context.Context, path string) (Snapshot, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return Snapshot{}, err
	}

	rows, err := d.conn.QueryContext(ctx, `
SELECT path, value FROM nodes
WHERE path = ? OR (path >= ? AND path < ?)
ORDER BY path`, clean, clean+"/", clean+"0")
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	tree := map[string]any{}
	for rows.Next() {
		var rowPath, raw string
		if err := rows.Scan(&rowPath, &raw); err != nil {
			return Snapshot{}, err
		}
		var leaf any
		if err := json.Unmarshal([]byte(raw), &leaf); err != nil {
			return Snapshot{}, fmt.Errorf("decode node %s: %w", rowPath, err)
		}
		if rowPath == clean {
			return Snapshot{Path: clean, value: leaf}, rows.Err()
		}
		rel := strings.TrimPrefix(rowPath, clean+"/")
		setAt(tree, strings.Split(rel, "/"), leaf)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}
	if len(tree) == 0 {
		return Snapshot{Path: clean}, nil
	}
	return Snapshot{Path: clean, value: tree}, nil
}

func (d *SQLite) Set(ctx context.Context, path string, value any) error {
	clean, err := CleanPath(path)
	if err != nil {
		return err
	}
	norm, err := normalizeValue(value)
	if err != nil {
		return err
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := writeNode(ctx, tx, clean, norm); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	d.notify(ctx, d, clean)
	return nil
}

func (d *SQLite) Update(ctx context.Context, path string, fields map[string]any) error {
	clean, err := CleanPath(path)
	if err != nil {
		return err
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for key, value := range fields {
		child, err := CleanPath(Join(clean, key))
		if err != nil {
			return err
		}
		norm, err := normalizeValue(value)
		if err != nil {
			return err
		}
		if err := writeNode(ctx, tx, child, norm); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	d.notify(ctx, d, clean)
	return nil
}

func (d *SQLite) Remove(ctx context.Context, path string) error {
	return d.Set(ctx, path, nil)
}

func (d *SQLite) Push(ctx context.Context, path string, value any) (string, error) {
	key := ulid.Make().String()
	if err := d.Set(ctx, Join(path, key), value); err != nil {
		return "", err
	}
	return key, nil
}

func (d *SQLite) Subscribe(ctx context.Context, path string, fn Listener) (func(), error) {
	return d.subscribe(ctx, d, path, fn)
}

// writeNode replaces the subtree at path with value. A scalar stored at an
// ancestor is dropped first since the ancestor becomes an object.
func writeNode(ctx context.Context, tx *sql.Tx, path string, value any) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE path = ? OR (path >= ? AND path < ?)`, path, path+"/", path+"0"); err != nil {
		return err
	}
	if value == nil {
		return nil
	}

	segs := strings.Split(path, "/")
	for i := 1; i < len(segs); i++ {
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE path = ?`, strings.Join(segs[:i], "/")); err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO nodes (path, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(path) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	leaves := map[string]any{}
	flatten(path, value, leaves)
	for leafPath, leaf := range leaves {
		blob, err := json.Marshal(leaf)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, leafPath, string(blob)); err != nil {
			return err
		}
	}
	return nil
}

func flatten(prefix string, v any, out map[string]any) {
	m, ok := v.(map[string]any)
	if !ok {
		out[prefix] = v
		return
	}
	for k, child := range m {
		flatten(prefix+"/"+k, child, out)
	}
}
