package scan

import (
	"context"

	"go.uber.org/zap"

	"simventas/internal"
	"simventas/internal/config"
	"simventas/internal/sales"
)

type Service struct {
	cfg    config.Config
	sales  *sales.Service
	logger *zap.Logger
}

func NewService(cfg config.Config, svc *sales.Service, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, sales: svc, logger: logger}
}

type Report struct {
	Matches []internal.ScanMatch `json:"matches"`
	Outcome sales.Outcome        `json:"outcome"`
	Applied int                  `json:"applied"`
}

func (s *Service) Match(ctx context.Context, month, text string) ([]internal.ScanMatch, error) {
	recs, err := s.sales.ListSales(ctx, month)
	if err != nil {
		return nil, err
	}
	return NewMatcher(s.cfg, recs).MatchText(text), nil
}

// Apply marks every confidently matched record as registered. An ICCID match
// also stores the ICCID as read.
func (s *Service) Apply(ctx context.Context, month, text string) (Report, error) {
	matches, err := s.Match(ctx, month, text)
	if err != nil {
		return Report{}, err
	}

	batch := []sales.Candidate{}
	for _, m := range matches {
		if m.Status != internal.MatchOK {
			continue
		}
		cand := sales.Candidate{
			sales.FieldNumero:      m.Numero,
			sales.FieldRegistroSIM: true,
		}
		if m.Reason == internal.ReasonICCID {
			cand[sales.FieldICCID] = m.Token
		}
		batch = append(batch, cand)
	}

	report := Report{Matches: matches, Applied: len(batch)}
	if len(batch) == 0 {
		report.Outcome = sales.Outcome{Errors: []string{}}
		return report, nil
	}
	out, err := s.sales.UpdateClientInfo(ctx, month, batch)
	if err != nil {
		return Report{}, err
	}
	report.Outcome = out
	s.logger.Info("scan applied",
		zap.String("month", month),
		zap.Int("tokens", len(matches)),
		zap.Int("applied", len(batch)),
		zap.Int("updated", out.Updated),
	)
	return report, nil
}
