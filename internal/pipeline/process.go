package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"simventas/internal"
	"simventas/internal/config"
	"simventas/internal/inbox"
	"simventas/internal/sales"
	"simventas/internal/scan"
)

type ProcessingService struct {
	inbox  *inbox.Repo
	sales  *sales.Service
	scan   *scan.Service
	cfg    config.Config
	logger *zap.Logger
	now    func() time.Time
}

func NewProcessingService(repo *inbox.Repo, svc *sales.Service, scanner *scan.Service, cfg config.Config, logger *zap.Logger) *ProcessingService {
	return &ProcessingService{inbox: repo, sales: svc, scan: scanner, cfg: cfg, logger: logger, now: time.Now}
}

type ProcessResult struct {
	Hash      string
	Status    string
	Operation sales.Operation
	Month     string
	Rows      int
	Dropped   int
	Outcome   sales.Outcome
}

func (s *ProcessingService) ProcessByProviderMessageID(ctx context.Context, provider, messageID string) (ProcessResult, error) {
	msg, err := s.inbox.ByMessageID(ctx, provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessMessage(ctx, msg)
}

// ProcessPending handles fetched messages in arrival order.
func (s *ProcessingService) ProcessPending(ctx context.Context, limit int, provider string) ([]ProcessResult, error) {
	pending, err := s.inbox.ListByStatus(ctx, inbox.StatusFetched, limit)
	if err != nil {
		return nil, err
	}
	var results []ProcessResult
	for _, msg := range pending {
		if provider != "" && msg.Provider != provider {
			continue
		}
		res, err := s.ProcessMessage(ctx, msg)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// ProcessMessage extracts rows or scan text from the stored e-mail and feeds
// them to the operation its subject names. Messages with nothing actionable
// are marked skipped; unreadable ones failed.
func (s *ProcessingService) ProcessMessage(ctx context.Context, msg internal.InboxMessage) (ProcessResult, error) {
	start := s.now()
	res := ProcessResult{Hash: msg.Hash}

	raw, err := os.ReadFile(msg.RawRef)
	if err != nil {
		return s.fail(ctx, res, start, fmt.Errorf("read raw message: %w", err))
	}
	ext, err := ExtractFromEmailRaw(raw)
	if err != nil {
		return s.fail(ctx, res, start, fmt.Errorf("parse message: %w", err))
	}

	intent := DetectIntent(firstNonEmpty(ext.Subject, msg.Subject), ext.Attachments, ext.RowCount() > 0)
	res.Month = s.monthFor(intent)
	res.Operation = intent.Operation

	switch {
	case intent.Scan:
		texts := append([]string{}, ext.ScanTexts...)
		for _, t := range ext.Tables {
			texts = append(texts, rowsText(t.Rows))
		}
		report, err := s.scan.Apply(ctx, res.Month, strings.Join(texts, "\n"))
		if err != nil {
			return s.fail(ctx, res, start, err)
		}
		res.Operation = sales.OpUpdateClientInfo
		res.Rows = len(report.Matches)
		res.Outcome = report.Outcome
	case intent.Operation != "" && ext.RowCount() > 0:
		var rows []map[string]any
		for _, t := range ext.Tables {
			rows = append(rows, t.Rows...)
		}
		batch, dropped := sales.ProjectRows(rows)
		res.Rows = len(rows)
		res.Dropped = dropped
		out, err := s.sales.Run(ctx, intent.Operation, res.Month, batch)
		if err != nil {
			return s.fail(ctx, res, start, err)
		}
		res.Outcome = out
	default:
		res.Status = inbox.StatusSkipped
		if err := s.inbox.UpdateStatus(ctx, msg.Hash, res.Status); err != nil {
			return res, err
		}
		s.logger.Info("message skipped", zap.String("hash", msg.Hash), zap.String("reason", intent.Reason))
		return res, s.insertRun(ctx, res, start, nil)
	}

	res.Status = inbox.StatusProcessed
	if err := s.inbox.UpdateStatus(ctx, msg.Hash, res.Status); err != nil {
		return res, err
	}
	s.logger.Info("message processed",
		zap.String("hash", msg.Hash),
		zap.String("operation", string(res.Operation)),
		zap.String("month", res.Month),
		zap.Int("rows", res.Rows),
		zap.Int("dropped", res.Dropped),
	)
	return res, s.insertRun(ctx, res, start, res.Outcome.Errors)
}

// monthFor picks the month named in the subject, then DEFAULT_MONTH, then the current one.
func (s *ProcessingService) monthFor(intent Intent) string {
	if intent.Month != "" {
		return intent.Month
	}
	if s.cfg.DefaultMonth != "" {
		return s.cfg.DefaultMonth
	}
	return sales.MonthKey(s.now())
}

func (s *ProcessingService) fail(ctx context.Context, res ProcessResult, start time.Time, cause error) (ProcessResult, error) {
	s.logger.Error("message processing failed", zap.String("hash", res.Hash), zap.Error(cause))
	res.Status = inbox.StatusFailed
	if err := s.inbox.UpdateStatus(ctx, res.Hash, res.Status); err != nil {
		return res, err
	}
	return res, s.insertRun(ctx, res, start, []string{cause.Error()})
}

func (s *ProcessingService) insertRun(ctx context.Context, res ProcessResult, start time.Time, errs []string) error {
	return s.inbox.InsertRun(ctx, inbox.Run{
		TraceID:   traceID(),
		Hash:      res.Hash,
		Operation: string(res.Operation),
		Month:     res.Month,
		Counts: map[string]int{
			"rows":    res.Rows,
			"dropped": res.Dropped,
			"added":   res.Outcome.Added,
			"updated": res.Outcome.Updated,
			"skipped": res.Outcome.Skipped,
		},
		Errors:     errs,
		DurationMs: s.now().Sub(start).Milliseconds(),
	})
}

// rowsText flattens table cells so the scan matcher can read them.
func rowsText(rows []map[string]any) string {
	var lines []string
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, fmt.Sprint(v))
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	return strings.Join(lines, "\n")
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
