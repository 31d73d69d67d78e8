package listener

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"simventas/internal/config"
	"simventas/internal/connectors"
	"simventas/internal/inbox"
	"simventas/internal/pipeline"
	"simventas/internal/sales"
	"simventas/internal/sheet"
)

type Fetcher interface {
	FetchAndStore(ctx context.Context, label string, max int) (connectors.FetchResult, error)
}

type Processor interface {
	ProcessPending(ctx context.Context, limit int, provider string) ([]pipeline.ProcessResult, error)
}

// Service polls the mailbox, reconciles what arrived and optionally writes one
// workbook per touched month.
type Service struct {
	fetch  Fetcher
	proc   Processor
	sales  *sales.Service
	cfg    config.Config
	logger *zap.Logger
}

func NewService(fetch Fetcher, proc Processor, svc *sales.Service, cfg config.Config, logger *zap.Logger) *Service {
	return &Service{fetch: fetch, proc: proc, sales: svc, cfg: cfg, logger: logger}
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.MailListenerIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	s.logger.Info("mail listener started",
		zap.String("provider", s.cfg.MailListenerProvider),
		zap.String("label", s.cfg.MailListenerLabel),
		zap.Duration("interval", interval),
	)
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			s.logger.Error("listener cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("mail listener stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

type CycleResult struct {
	Fetch     connectors.FetchResult
	Processed []pipeline.ProcessResult
	Exported  []string
}

func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	var res CycleResult
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))

	fetched, err := s.fetch.FetchAndStore(ctx, s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return res, err
	}
	res.Fetch = fetched

	processed, err := s.proc.ProcessPending(ctx, s.cfg.MailListenerProcessBatch, provider)
	res.Processed = processed
	if err != nil {
		return res, err
	}

	if s.cfg.MailListenerAutoExport {
		exported, err := s.exportMonths(ctx, processed)
		res.Exported = exported
		if err != nil {
			return res, err
		}
	}

	s.logger.Info("listener cycle done",
		zap.String("provider", provider),
		zap.Int("fetched", fetched.Fetched),
		zap.Int("new", fetched.New),
		zap.Int("processed", len(processed)),
		zap.Int("exported", len(res.Exported)),
	)
	return res, nil
}

// exportMonths rewrites OUTPUT_DIR/listener/{month}.xlsx for every month a
// processed message changed.
func (s *Service) exportMonths(ctx context.Context, results []pipeline.ProcessResult) ([]string, error) {
	months := map[string]bool{}
	for _, r := range results {
		if r.Status == inbox.StatusProcessed && r.Month != "" && r.Outcome.Added+r.Outcome.Updated > 0 {
			months[r.Month] = true
		}
	}
	names := make([]string, 0, len(months))
	for m := range months {
		names = append(names, m)
	}
	sort.Strings(names)

	var paths []string
	for _, month := range names {
		recs, err := s.sales.ListSales(ctx, month)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(s.cfg.OutputDir, "listener", month+".xlsx")
		if err := sheet.SaveSales(path, month, recs); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
