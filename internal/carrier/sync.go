package carrier

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"simventas/internal/sales"
	"simventas/internal/util"
)

const estadoEntregado = "ENTREGADO"

type Tracker interface {
	Track(ctx context.Context, guia string) (Tracking, error)
}

type SyncService struct {
	sales   *sales.Service
	tracker Tracker
	logger  *zap.Logger
}

func NewSyncService(svc *sales.Service, tracker Tracker, logger *zap.Logger) *SyncService {
	return &SyncService{sales: svc, tracker: tracker, logger: logger}
}

type SyncResult struct {
	Checked  int           `json:"checked"`
	NotFound int           `json:"notFound"`
	Failed   int           `json:"failed"`
	Outcome  sales.Outcome `json:"outcome"`
}

// SyncMonth asks the carrier about every undelivered guide of month and
// writes the answers through UpdateGuides.
func (s *SyncService) SyncMonth(ctx context.Context, month string) (SyncResult, error) {
	recs, err := s.sales.ListSales(ctx, month)
	if err != nil {
		return SyncResult{}, err
	}

	var res SyncResult
	batch := []sales.Candidate{}
	for _, rec := range recs {
		if strings.TrimSpace(rec.Guia) == "" || delivered(rec.EstadoGuia) {
			continue
		}
		res.Checked++
		tr, err := s.tracker.Track(ctx, rec.Guia)
		switch {
		case errors.Is(err, ErrGuideNotFound):
			res.NotFound++
			continue
		case ctx.Err() != nil:
			return res, ctx.Err()
		case err != nil:
			res.Failed++
			s.logger.Warn("carrier tracking failed", zap.String("guia", rec.Guia), zap.Error(err))
			continue
		}
		batch = append(batch, candidateFrom(rec.Numero, tr))
	}

	if len(batch) == 0 {
		res.Outcome = sales.Outcome{Errors: []string{}}
		return res, nil
	}
	out, err := s.sales.UpdateGuides(ctx, month, batch)
	if err != nil {
		return res, err
	}
	res.Outcome = out
	s.logger.Info("carrier sync done",
		zap.String("month", month),
		zap.Int("checked", res.Checked),
		zap.Int("updated", out.Updated),
		zap.Int("not_found", res.NotFound),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func delivered(estado string) bool {
	return strings.ToUpper(util.StripAccents(strings.TrimSpace(estado))) == estadoEntregado
}

// candidateFrom carries only what the carrier reported; blank answers keep the stored values.
func candidateFrom(numero string, tr Tracking) sales.Candidate {
	cand := sales.Candidate{sales.FieldNumero: numero}
	for field, v := range map[string]string{
		sales.FieldTransportadora:     tr.Transportadora,
		sales.FieldEstadoGuia:         tr.Estado,
		sales.FieldNovedad:            tr.Novedad,
		sales.FieldDescripcionNovedad: tr.Descripcion,
		sales.FieldFechaHoraReporte:   tr.FechaReporte,
	} {
		if strings.TrimSpace(v) != "" {
			cand[field] = v
		}
	}
	return cand
}
