package carrier

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"simventas/internal/sales"
	"simventas/internal/store"
)

type fakeTracker struct {
	answers map[string]Tracking
	calls   []string
}

func (f *fakeTracker) Track(_ context.Context, guia string) (Tracking, error) {
	f.calls = append(f.calls, guia)
	if guia == "G-ERR" {
		return Tracking{}, errors.New("timeout")
	}
	tr, ok := f.answers[guia]
	if !ok {
		return Tracking{}, ErrGuideNotFound
	}
	return tr, nil
}

func TestSyncMonth(t *testing.T) {
	ctx := context.Background()
	const month = "Septiembre_2025"
	svc := sales.NewService(store.NewMemory(), zap.NewNop())
	out, err := svc.ImportSales(ctx, month, []sales.Candidate{
		{sales.FieldNumero: "3001111111", sales.FieldGuia: "G-1", sales.FieldTransportadora: "Servientrega"},
		{sales.FieldNumero: "3002222222", sales.FieldGuia: "G-2", sales.FieldEstadoGuia: "Entregado"},
		{sales.FieldNumero: "3003333333"},
		{sales.FieldNumero: "3004444444", sales.FieldGuia: "G-404"},
		{sales.FieldNumero: "3005555555", sales.FieldGuia: "G-ERR"},
	})
	if err != nil || out.Added != 5 {
		t.Fatalf("seed %+v %v", out, err)
	}

	tracker := &fakeTracker{answers: map[string]Tracking{
		"G-1": {Estado: "en reparto", Novedad: "", FechaReporte: "20/09/2025"},
	}}
	res, err := NewSyncService(svc, tracker, zap.NewNop()).SyncMonth(ctx, month)
	if err != nil {
		t.Fatal(err)
	}
	if res.Checked != 3 || res.NotFound != 1 || res.Failed != 1 || res.Outcome.Updated != 1 {
		t.Fatalf("res=%+v", res)
	}
	if len(tracker.calls) != 3 {
		t.Fatalf("calls=%v", tracker.calls)
	}

	rec, _, err := svc.GetSale(ctx, month, "3001111111")
	if err != nil {
		t.Fatal(err)
	}
	if rec.EstadoGuia != "EN REPARTO" || rec.FechaHoraReporte != "2025-09-20" || rec.Transportadora != "SERVIENTREGA" {
		t.Fatalf("rec=%+v", rec)
	}
}
