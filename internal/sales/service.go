package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"simventas/internal"
	"simventas/internal/store"
)

// Recorder receives one audit entry per finished operation.
type Recorder interface {
	Record(ctx context.Context, entry internal.ActivityEntry) error
}

type Service struct {
	store      store.Store
	logger     *zap.Logger
	recorder   Recorder
	categories map[Operation]Category
	engine     *reconciler
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.engine.now = now }
}

func WithCatalog(cat Catalog) Option {
	return func(s *Service) { s.categories = buildCategories(cat) }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func NewService(st store.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:      st,
		logger:     logger,
		categories: buildCategories(DefaultCatalog()),
		engine:     &reconciler{store: st, logger: logger, now: time.Now},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Category(op Operation) (Category, bool) {
	c, ok := s.categories[op]
	return c, ok
}

// Run reconciles batch into month with the rules of op.
func (s *Service) Run(ctx context.Context, op Operation, month string, batch []Candidate) (Outcome, error) {
	c, ok := s.categories[op]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	out, err := s.engine.run(ctx, c, month, batch)
	if err != nil {
		return Outcome{}, err
	}
	s.record(ctx, internal.ActivityEntry{
		Action:  string(op),
		Month:   month,
		Added:   out.Added,
		Updated: out.Updated,
		Skipped: out.Skipped,
		Errors:  len(out.Errors),
	})
	return out, nil
}

func (s *Service) AddSales(ctx context.Context, month string, updates []Candidate) (Outcome, error) {
	return s.Run(ctx, OpAddSales, month, updates)
}

func (s *Service) ImportSales(ctx context.Context, month string, updates []Candidate) (Outcome, error) {
	return s.Run(ctx, OpImportSales, month, updates)
}

func (s *Service) UpdateClientInfo(ctx context.Context, month string, updates []Candidate) (Outcome, error) {
	return s.Run(ctx, OpUpdateClientInfo, month, updates)
}

func (s *Service) UpdateActivationDate(ctx context.Context, month string, updates []Candidate) (Outcome, error) {
	return s.Run(ctx, OpUpdateActivationDate, month, updates)
}

// UpdateSimStatus does not apply the ENVIADA shipping rule; only creation and
// import check it.
func (s *Service) UpdateSimStatus(ctx context.Context, month string, updates []Candidate) (Outcome, error) {
	return s.Run(ctx, OpUpdateSimStatus, month, updates)
}

func (s *Service) UpdateSalesType(ctx context.Context, month string, updates []Candidate) (Outcome, error) {
	return s.Run(ctx, OpUpdateSalesType, month, updates)
}

func (s *Service) UpdateManagementStatus(ctx context.Context, month string, updates []Candidate) (Outcome, error) {
	return s.Run(ctx, OpUpdateManagementStatus, month, updates)
}

func (s *Service) UpdatePortfolio(ctx context.Context, month string, updates []Candidate) (Outcome, error) {
	return s.Run(ctx, OpUpdatePortfolio, month, updates)
}

func (s *Service) UpdateGuides(ctx context.Context, month string, updates []Candidate) (Outcome, error) {
	return s.Run(ctx, OpUpdateGuides, month, updates)
}

func (s *Service) UpdateIncome(ctx context.Context, month string, updates []Candidate) (Outcome, error) {
	return s.Run(ctx, OpUpdateIncome, month, updates)
}

// DeleteSales removes the listed numbers from month. Unknown or malformed
// numbers are reported and do not stop the rest.
func (s *Service) DeleteSales(ctx context.Context, month string, numeros []string) (DeleteOutcome, error) {
	if err := checkBatch(month, numeros == nil); err != nil {
		return DeleteOutcome{}, err
	}

	out := DeleteOutcome{Errors: []string{}}
	for _, raw := range numeros {
		numero, _ := NormalizePhone(raw)
		if !ValidNumero(numero) {
			out.Errors = append(out.Errors, fmt.Sprintf("NUMERO inválido %q", strings.TrimSpace(raw)))
			continue
		}
		path := SalePath(month, numero)
		snap, err := s.store.Get(ctx, path)
		if err != nil {
			s.logger.Error("sales lookup failed", zap.String("month", month), zap.String("numero", numero), zap.Error(err))
			out.Errors = append(out.Errors, fmt.Sprintf("%s: error al consultar la base de datos", numero))
			continue
		}
		if !snap.Exists() {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: no encontrado", numero))
			continue
		}
		if err := s.store.Remove(ctx, path); err != nil {
			s.logger.Error("sales delete failed", zap.String("month", month), zap.String("numero", numero), zap.Error(err))
			out.Errors = append(out.Errors, fmt.Sprintf("%s: error al eliminar", numero))
			continue
		}
		out.Deleted++
	}

	s.logger.Info("sales deleted",
		zap.String("month", month),
		zap.Int("requested", len(numeros)),
		zap.Int("deleted", out.Deleted),
		zap.Int("errors", len(out.Errors)),
	)
	s.record(ctx, internal.ActivityEntry{
		Action:  string(OpDeleteSales),
		Month:   month,
		Deleted: out.Deleted,
		Errors:  len(out.Errors),
	})
	return out, nil
}

// ListMonths returns the month collections that hold data, alphabetically by key.
func (s *Service) ListMonths(ctx context.Context) ([]string, error) {
	snap, err := s.store.Get(ctx, monthsRoot)
	if err != nil {
		return nil, err
	}
	children := snap.Children()
	out := make([]string, 0, len(children))
	for _, c := range children {
		out = append(out, c.Key())
	}
	return out, nil
}

// ListSales returns the records of month ordered by NUMERO.
func (s *Service) ListSales(ctx context.Context, month string) ([]internal.SaleRecord, error) {
	if err := ValidMonth(month); err != nil {
		return nil, err
	}
	snap, err := s.store.Get(ctx, SalesPath(month))
	if err != nil {
		return nil, err
	}
	return DecodeSales(snap)
}

func (s *Service) GetSale(ctx context.Context, month, numero string) (internal.SaleRecord, bool, error) {
	if err := ValidMonth(month); err != nil {
		return internal.SaleRecord{}, false, err
	}
	if !ValidNumero(numero) {
		return internal.SaleRecord{}, false, nil
	}
	snap, err := s.store.Get(ctx, SalePath(month, numero))
	if err != nil || !snap.Exists() {
		return internal.SaleRecord{}, false, err
	}
	var rec internal.SaleRecord
	if err := snap.Decode(&rec); err != nil {
		return internal.SaleRecord{}, false, err
	}
	if rec.Numero == "" {
		rec.Numero = numero
	}
	return rec, true, nil
}

// WatchMonth calls fn with the whole month, sorted, now and after every change.
func (s *Service) WatchMonth(ctx context.Context, month string, fn func([]internal.SaleRecord)) (func(), error) {
	if err := ValidMonth(month); err != nil {
		return nil, err
	}
	return s.store.Subscribe(ctx, SalesPath(month), func(snap store.Snapshot) {
		recs, err := DecodeSales(snap)
		if err != nil {
			s.logger.Warn("month snapshot decode failed", zap.String("month", month), zap.Error(err))
			return
		}
		fn(recs)
	})
}

// DecodeSales reads a month's sales node into records sorted by NUMERO.
func DecodeSales(snap store.Snapshot) ([]internal.SaleRecord, error) {
	children := snap.Children()
	out := make([]internal.SaleRecord, 0, len(children))
	for _, c := range children {
		var rec internal.SaleRecord
		if err := c.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode sale %s: %w", c.Key(), err)
		}
		if rec.Numero == "" {
			rec.Numero = c.Key()
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, nil
}

func (s *Service) record(ctx context.Context, entry internal.ActivityEntry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("activity log write failed", zap.String("action", entry.Action), zap.Error(err))
	}
}
