package connectors

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"simventas/internal"
	"simventas/internal/config"
	"simventas/internal/inbox"
	"simventas/internal/store"
)

type fakeConnector struct {
	messages []internal.FetchedMailMessage
	label    string
}

func (f *fakeConnector) FetchInbox(_ context.Context, label string, max int) ([]internal.FetchedMailMessage, error) {
	f.label = label
	if len(f.messages) > max {
		return f.messages[:max], nil
	}
	return f.messages, nil
}

func TestFetchAndStoreDeduplicatesByHash(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := inbox.New(store.NewMemory())
	conn := &fakeConnector{messages: []internal.FetchedMailMessage{
		{Provider: "imap", MessageID: "<1@x>", Subject: "Guias", ReceivedAt: "2025-09-01T10:00:00Z", Raw: []byte("Subject: Guias\r\n\r\nuno")},
		{Provider: "imap", MessageID: "<2@x>", Subject: "Cartera", ReceivedAt: "2025-09-01T11:00:00Z", Raw: []byte("Subject: Cartera\r\n\r\ndos")},
	}}
	svc := NewFetchService(repo, dir, conn, zap.NewNop())

	res, err := svc.FetchAndStore(ctx, "INBOX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Fetched != 2 || res.Stored != 2 || res.New != 2 || conn.label != "INBOX" {
		t.Fatalf("res=%+v label=%q", res, conn.label)
	}

	res, err = svc.FetchAndStore(ctx, "INBOX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.New != 0 {
		t.Fatalf("second fetch should find nothing new: %+v", res)
	}

	pending, err := repo.ListByStatus(ctx, inbox.StatusFetched, 0)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending=%v err=%v", pending, err)
	}
	raw, err := os.ReadFile(pending[0].RawRef)
	if err != nil || string(raw) != "Subject: Guias\r\n\r\nuno" {
		t.Fatalf("raw=%q err=%v", raw, err)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(config.Config{}, "pop3"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := New(config.Config{}, "imap"); err == nil {
		t.Fatal("expected missing IMAP_HOST error")
	}
}
