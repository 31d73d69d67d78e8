package sales

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"simventas/internal/store"
)

var (
	ErrMonthRequired   = errors.New("month is required")
	ErrInvalidMonth    = errors.New("invalid month name")
	ErrUpdatesRequired = errors.New("updates are required")
)

// Candidate is one loosely typed partial record keyed by canonical field name.
type Candidate map[string]any

func (c Candidate) numero() string {
	raw, ok := c[FieldNumero]
	if !ok {
		return ""
	}
	s, _ := NormalizePhone(raw)
	return s
}

type reconciler struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

func checkBatch(month string, nilBatch bool) error {
	if strings.TrimSpace(month) == "" {
		return ErrMonthRequired
	}
	if err := ValidMonth(month); err != nil {
		return err
	}
	if nilBatch {
		return ErrUpdatesRequired
	}
	return nil
}

// run reconciles the batch one record at a time. After the preconditions pass
// the outcome is always returned; record failures only land in Errors.
func (r *reconciler) run(ctx context.Context, c Category, month string, batch []Candidate) (Outcome, error) {
	if err := checkBatch(month, batch == nil); err != nil {
		return Outcome{}, err
	}

	t := newTally(c)
	for i, cand := range batch {
		r.reconcile(ctx, c, month, i, cand, t)
	}
	out := t.result()

	r.logger.Info("batch reconciled",
		zap.String("operation", string(c.Op)),
		zap.String("month", month),
		zap.Int("records", len(batch)),
		zap.Int("added", out.Added),
		zap.Int("updated", out.Updated),
		zap.Int("skipped", out.Skipped),
		zap.Int("errors", len(out.Errors)),
	)
	return out, nil
}

func (r *reconciler) reconcile(ctx context.Context, c Category, month string, index int, cand Candidate, t *tally) {
	numero := cand.numero()
	if numero == "" {
		if !c.CanCreate() {
			t.out.Skipped++
		}
		t.missingNumero(index)
		return
	}
	if !ValidNumero(numero) {
		if !c.CanCreate() {
			t.out.Skipped++
		}
		t.invalidNumero(index, numero)
		return
	}

	path := SalePath(month, numero)
	if c.Policy == UpdateOnly {
		r.updateExisting(ctx, c, month, path, numero, cand, t)
		return
	}
	r.createOrMerge(ctx, c, month, path, index, numero, cand, t)
}

// updateExisting never creates: the number must already be in the month, and
// that is checked before the payload so a missing record is always reported.
func (r *reconciler) updateExisting(ctx context.Context, c Category, month, path, numero string, cand Candidate, t *tally) {
	snap, err := r.store.Get(ctx, path)
	if err != nil {
		r.storeFailed(c, month, numero, "lookup", err, t)
		return
	}
	if !snap.Exists() {
		t.notFound(numero)
		return
	}

	payload, problems := c.payload(cand)
	if len(problems) > 0 {
		t.out.Skipped++
		t.invalidField(numero, problems)
		return
	}
	if len(payload) == 0 {
		t.out.Skipped++
		return
	}
	if err := r.store.Update(ctx, path, payload); err != nil {
		r.storeFailed(c, month, numero, "update", err, t)
		return
	}
	t.out.Updated++
}

func (r *reconciler) createOrMerge(ctx context.Context, c Category, month, path string, index int, numero string, cand Candidate, t *tally) {
	payload, problems := c.payload(cand)
	if len(problems) > 0 {
		t.rejected(index, numero, problems[0])
		return
	}

	snap, err := r.store.Get(ctx, path)
	if err != nil {
		r.storeFailed(c, month, numero, "lookup", err, t)
		return
	}

	if snap.Exists() {
		if c.Policy == CreateOnly {
			t.out.Skipped++
			return
		}
		if len(payload) == 0 {
			t.out.Skipped++
			return
		}
		if c.RequireShipping && touchesShipping(payload) {
			if err := CheckShipping(merge(snap.Map(), payload)); err != nil {
				t.rejected(index, numero, err)
				return
			}
		}
		if err := r.store.Update(ctx, path, payload); err != nil {
			r.storeFailed(c, month, numero, "update", err, t)
			return
		}
		t.out.Updated++
		return
	}

	record := r.newRecord(numero, payload)
	if c.RequireShipping {
		if err := CheckShipping(record); err != nil {
			t.rejected(index, numero, err)
			return
		}
	}
	if err := r.store.Set(ctx, path, record); err != nil {
		r.storeFailed(c, month, numero, "create", err, t)
		return
	}
	t.out.Added++
}

func (r *reconciler) storeFailed(c Category, month, numero, step string, err error, t *tally) {
	r.logger.Error("sales store operation failed",
		zap.String("operation", string(c.Op)),
		zap.String("step", step),
		zap.String("month", month),
		zap.String("numero", numero),
		zap.Error(err),
	)
	t.storeFailure(numero)
}

// newRecord seeds every field so new records read the same regardless of
// which operation created them. SALDO and ABONO stay absent until set.
func (r *reconciler) newRecord(numero string, payload map[string]any) map[string]any {
	rec := map[string]any{
		FieldNumero:             numero,
		FieldICCID:              "",
		FieldRegistroSIM:        false,
		FieldFechaIngreso:       "",
		FieldFechaActivacion:    "",
		FieldFechaCartera:       "",
		FieldFechaHoraReporte:   "",
		FieldEstadoSim:          "",
		FieldTipoVenta:          "",
		FieldNovedadEnGestion:   "",
		FieldContacto1:          "",
		FieldContacto2:          "",
		FieldNombre:             "",
		FieldGuia:               "",
		FieldTransportadora:     "",
		FieldEstadoGuia:         "",
		FieldNovedad:            "",
		FieldDescripcionNovedad: "",
	}
	for k, v := range payload {
		if v == nil {
			delete(rec, k)
			continue
		}
		rec[k] = v
	}
	rec[FieldCreatedAt] = r.now().UTC().Format(time.RFC3339)
	return rec
}

func touchesShipping(payload map[string]any) bool {
	for _, k := range []string{FieldEstadoSim, FieldGuia, FieldTransportadora} {
		if _, ok := payload[k]; ok {
			return true
		}
	}
	return false
}

func merge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
