package app

import (
	"path/filepath"
	"testing"

	"simventas/internal/config"
)

func TestNewLogger(t *testing.T) {
	for _, lvl := range []string{"", "debug", "WARN"} {
		if _, err := NewLogger(lvl); err != nil {
			t.Fatalf("level %q: %v", lvl, err)
		}
	}
	if _, err := NewLogger("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWiresBackends(t *testing.T) {
	a, err := New(config.Config{StoreBackend: "sqlite", DBPath: filepath.Join(t.TempDir(), "db", "s.db")})
	if err != nil {
		t.Fatal(err)
	}
	if a.Sales == nil || a.Inbox == nil || a.Scan == nil || a.Processor() == nil {
		t.Fatalf("app=%+v", a)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := New(config.Config{StoreBackend: "redis"}); err == nil {
		t.Fatal("expected unknown backend error")
	}
	if _, err := (&App{Cfg: config.Config{}}).Fetcher("pop3"); err == nil {
		t.Fatal("expected unknown provider error")
	}
}
