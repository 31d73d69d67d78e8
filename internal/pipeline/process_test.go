package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"simventas/internal"
	"simventas/internal/config"
	"simventas/internal/inbox"
	"simventas/internal/sales"
	"simventas/internal/scan"
	"simventas/internal/store"
)

const testMonth = "Septiembre_2025"

type fixture struct {
	proc  *ProcessingService
	repo  *inbox.Repo
	sales *sales.Service
	dir   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := store.NewMemory()
	cfg := config.Config{ScanOKThreshold: 0.92, ScanReviewThreshold: 0.80, ScanGapThreshold: 0.03, DefaultMonth: testMonth}
	svc := sales.NewService(st, zap.NewNop())
	repo := inbox.New(st)
	proc := NewProcessingService(repo, svc, scan.NewService(cfg, svc, zap.NewNop()), cfg, zap.NewNop())
	proc.now = func() time.Time { return time.Date(2025, 9, 20, 8, 0, 0, 0, time.UTC) }

	out, err := svc.AddSales(context.Background(), testMonth, []sales.Candidate{
		{sales.FieldNumero: "3001234567", sales.FieldICCID: "8957101234567890123"},
		{sales.FieldNumero: "3109876543"},
	})
	if err != nil || out.Added != 2 {
		t.Fatalf("seed: %+v %v", out, err)
	}
	return fixture{proc: proc, repo: repo, sales: svc, dir: t.TempDir()}
}

func (f fixture) deliver(t *testing.T, subject string, raw []byte) internal.InboxMessage {
	t.Helper()
	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])
	path := filepath.Join(f.dir, hash+".eml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	msg, err := f.repo.Upsert(context.Background(), internal.InboxMessage{
		Hash:       hash,
		Provider:   "imap",
		MessageID:  "<" + hash[:8] + "@example.com>",
		Subject:    subject,
		ReceivedAt: "2025-09-20T07:00:00Z",
		RawRef:     path,
	})
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestProcessMessageHTMLTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	subject := "Estado SIM septiembre 2025"
	html := `<table><tr><th>Numero</th><th>Estado SIM</th></tr>
<tr><td>3001234567</td><td>activa</td></tr>
<tr><td>3000000000</td><td>activa</td></tr>
<tr><td>sin numero</td><td>activa</td></tr></table>`
	msg := f.deliver(t, subject, mkEML(subject, "ver tabla", html, nil))

	res, err := f.proc.ProcessMessage(ctx, msg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != inbox.StatusProcessed || res.Operation != sales.OpUpdateSimStatus || res.Month != testMonth {
		t.Fatalf("res=%+v", res)
	}
	if res.Rows != 3 || res.Dropped != 1 || res.Outcome.Updated != 1 {
		t.Fatalf("counts=%+v", res)
	}
	rec, ok, err := f.sales.GetSale(ctx, testMonth, "3001234567")
	if err != nil || !ok || rec.EstadoSim != sales.EstadoActiva {
		t.Fatalf("rec=%+v ok=%v err=%v", rec, ok, err)
	}

	stored, _, _ := f.repo.Get(ctx, msg.Hash)
	if stored.Status != inbox.StatusProcessed {
		t.Fatalf("status=%q", stored.Status)
	}
	runs, err := f.repo.Runs(ctx)
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs=%v err=%v", runs, err)
	}
	if runs[0].Operation != string(sales.OpUpdateSimStatus) || runs[0].Counts["updated"] != 1 || len(runs[0].Errors) != 1 {
		t.Fatalf("run=%+v", runs[0])
	}
}

func TestProcessMessageScan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	subject := "Escaneo registro SIM"
	msg := f.deliver(t, subject, mkEML(subject, "Lectura:\n8957 1012 3456 7890 123\n", "", nil))

	res, err := f.proc.ProcessMessage(ctx, msg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != inbox.StatusProcessed || res.Outcome.Updated != 1 {
		t.Fatalf("res=%+v", res)
	}
	rec, _, _ := f.sales.GetSale(ctx, testMonth, "3001234567")
	if rec.RegistroSIM != internal.RegistroRegistered {
		t.Fatalf("registro=%v", rec.RegistroSIM)
	}
}

func TestProcessPendingSkipsAndFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	skip := f.deliver(t, "Hola", mkEML("Hola", "sin adjuntos", "", nil))
	broken := f.deliver(t, "Guias", mkEML("Guias", "x", "", nil))
	if err := os.Remove(broken.RawRef); err != nil {
		t.Fatal(err)
	}

	results, err := f.proc.ProcessPending(ctx, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results=%+v", results)
	}
	byHash := map[string]string{}
	for _, r := range results {
		byHash[r.Hash] = r.Status
	}
	if byHash[skip.Hash] != inbox.StatusSkipped || byHash[broken.Hash] != inbox.StatusFailed {
		t.Fatalf("statuses=%v", byHash)
	}

	again, err := f.proc.ProcessPending(ctx, 10, "")
	if err != nil || len(again) != 0 {
		t.Fatalf("second pass=%v err=%v", again, err)
	}
}
