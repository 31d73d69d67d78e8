package sales

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"simventas/internal"
	"simventas/internal/store"
)

var fixedNow = time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, store.Store) {
	t.Helper()
	st := store.NewMemory()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(st, zap.NewNop(), opts...), st
}

func seed(t *testing.T, svc *Service, month string, rows ...Candidate) {
	t.Helper()
	out, err := svc.AddSales(context.Background(), month, rows)
	require.NoError(t, err)
	require.Equal(t, len(rows), out.Added, out.Errors)
}

func stored(t *testing.T, st store.Store, month, numero string) map[string]any {
	t.Helper()
	snap, err := st.Get(context.Background(), SalePath(month, numero))
	require.NoError(t, err)
	return snap.Map()
}

func TestAddSalesSeedsDefaults(t *testing.T) {
	svc, st := newTestService(t)
	out, err := svc.AddSales(context.Background(), "2025_01", []Candidate{{FieldNumero: "3001234567"}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Added)
	assert.Equal(t, 0, out.Skipped)
	assert.Empty(t, out.Errors)

	rec := stored(t, st, "2025_01", "3001234567")
	assert.Equal(t, false, rec[FieldRegistroSIM])
	assert.Equal(t, "", rec[FieldEstadoSim])
	assert.Equal(t, "", rec[FieldICCID])
	assert.Equal(t, "3001234567", rec[FieldNumero])
	assert.Equal(t, "2025-09-14T12:00:00Z", rec[FieldCreatedAt])
	assert.NotContains(t, rec, FieldSaldo)
	assert.NotContains(t, rec, FieldAbono)
}

func TestAddSalesOutcomeJSON(t *testing.T) {
	svc, _ := newTestService(t)
	out, err := svc.AddSales(context.Background(), "2025_01", []Candidate{{FieldNumero: "3001234567"}})
	require.NoError(t, err)
	blob, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"added":1,"updated":0,"skipped":0,"errors":[]}`, string(blob))

	upd, err := svc.UpdateIncome(context.Background(), "2025_01", []Candidate{{FieldNumero: "3001234567", FieldFechaIngreso: "1/9/2025"}})
	require.NoError(t, err)
	blob, err = json.Marshal(upd)
	require.NoError(t, err)
	assert.JSONEq(t, `{"updated":1,"skipped":0,"errors":[]}`, string(blob))
}

func TestAddSalesNormalizesValues(t *testing.T) {
	svc, st := newTestService(t)
	out, err := svc.AddSales(context.Background(), "Septiembre_2025", []Candidate{{
		FieldNumero:         "300 123 4567",
		FieldNombre:         " maría  josé ",
		FieldEstadoSim:      "enviada",
		FieldGuia:           "g-001",
		FieldTransportadora: "servientrega",
		FieldTipoVenta:      "PORTABILIDAD",
		FieldFechaIngreso:   float64(45283),
		FieldRegistroSIM:    "si",
		FieldContacto1:      "310-123-4567",
	}})
	require.NoError(t, err)
	require.Equal(t, 1, out.Added, out.Errors)

	rec := stored(t, st, "Septiembre_2025", "3001234567")
	assert.Equal(t, "MARIA JOSE", rec[FieldNombre])
	assert.Equal(t, "ENVIADA", rec[FieldEstadoSim])
	assert.Equal(t, "G-001", rec[FieldGuia])
	assert.Equal(t, "SERVIENTREGA", rec[FieldTransportadora])
	assert.Equal(t, "portabilidad", rec[FieldTipoVenta])
	assert.Equal(t, "2023-12-23", rec[FieldFechaIngreso])
	assert.Equal(t, true, rec[FieldRegistroSIM])
	assert.Equal(t, "3101234567", rec[FieldContacto1])
}

func TestAddSalesDuplicateNumeroIsSkipped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	out, err := svc.AddSales(ctx, "2025_01", []Candidate{
		{FieldNumero: "3001234567", FieldNombre: "primero"},
		{FieldNumero: "3001234567", FieldNombre: "segundo"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Added)
	assert.Equal(t, 1, out.Skipped)
	assert.Empty(t, out.Errors)

	out, err = svc.AddSales(ctx, "2025_01", []Candidate{{FieldNumero: "3001234567"}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Added)
	assert.Equal(t, 1, out.Skipped)

	rec, ok, err := svc.GetSale(ctx, "2025_01", "3001234567")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "PRIMERO", rec.Nombre)
}

func TestAddSalesEnviadaRequiresShipping(t *testing.T) {
	svc, st := newTestService(t)
	out, err := svc.AddSales(context.Background(), "2025_01", []Candidate{{FieldNumero: "3001234567", FieldEstadoSim: "ENVIADA"}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Added)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "ENVIADA")
	assert.Contains(t, out.Errors[0], "GUIA")
	assert.Nil(t, stored(t, st, "2025_01", "3001234567"))
}

func TestAddSalesStrictValidationIsPerRecord(t *testing.T) {
	svc, _ := newTestService(t)
	out, err := svc.AddSales(context.Background(), "2025_01", []Candidate{
		{FieldNumero: "3001234567", FieldEstadoSim: "SUSPENDIDA"},
		{FieldNumero: "3001234568", FieldContacto1: "123"},
		{FieldNumero: "3001234569"},
		{FieldNombre: "sin numero"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Added)
	assert.Equal(t, 0, out.Skipped)
	require.Len(t, out.Errors, 3)
	assert.Contains(t, out.Errors[0], "3001234567")
	assert.Contains(t, out.Errors[0], "ESTADO_SIM")
	assert.Contains(t, out.Errors[1], "CONTACTO_1")
	assert.Contains(t, out.Errors[2], "falta NUMERO")
}

func TestUpdateSimStatusNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	out, err := svc.UpdateSimStatus(context.Background(), "2025_01", []Candidate{{FieldNumero: "3009999999", FieldEstadoSim: "ACTIVA"}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Updated)
	assert.Equal(t, 0, out.Skipped)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "1 números no encontrados")
	assert.Contains(t, out.Errors[0], "3009999999")
}

func TestUpdateOnlyNotFoundRegardlessOfPayload(t *testing.T) {
	payloads := []Candidate{
		{},
		{FieldEstadoSim: "NO EXISTE"},
		{FieldTipoVenta: "otra"},
		{FieldContacto1: "1"},
		{FieldFechaActivacion: "2025-01-01"},
		{FieldSaldo: "nada"},
	}
	for _, op := range Operations {
		svc, _ := newTestService(t)
		c, _ := svc.Category(op)
		if c.CanCreate() {
			continue
		}
		t.Run(string(op), func(t *testing.T) {
			for _, p := range payloads {
				cand := Candidate{FieldNumero: "3009999999"}
				for k, v := range p {
					cand[k] = v
				}
				out, err := svc.Run(context.Background(), op, "2025_01", []Candidate{cand})
				require.NoError(t, err)
				assert.Equal(t, 0, out.Updated)
				require.NotEmpty(t, out.Errors)
				assert.Contains(t, out.Errors[0], "3009999999")
			}
		})
	}
}

func TestUpdateSimStatusAggregatesInvalidValues(t *testing.T) {
	svc, st := newTestService(t)
	month := "2025_01"
	seed(t, svc, month, Candidate{FieldNumero: "3001111111"}, Candidate{FieldNumero: "3002222222"}, Candidate{FieldNumero: "3003333333"})

	out, err := svc.UpdateSimStatus(context.Background(), month, []Candidate{
		{FieldNumero: "3001111111", FieldEstadoSim: "activa"},
		{FieldNumero: "3002222222", FieldEstadoSim: "SUSPENDIDA"},
		{FieldNumero: "3003333333", FieldEstadoSim: "BLOQUEADA"},
		{FieldNumero: "3004444444", FieldEstadoSim: "ACTIVA"},
		{FieldNumero: "3005555555", FieldEstadoSim: "ACTIVA"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated)
	assert.Equal(t, 2, out.Skipped)
	require.Len(t, out.Errors, 2)
	assert.Contains(t, out.Errors[0], "2 registros omitidos: ESTADO_SIM inválido (permitidos: ACTIVA")
	assert.Contains(t, out.Errors[0], "3002222222, 3003333333")
	assert.Equal(t, "2 números no encontrados (creación no permitida): 3004444444, 3005555555", out.Errors[1])
	assert.Equal(t, "ACTIVA", stored(t, st, month, "3001111111")[FieldEstadoSim])
}

func TestUpdateSimStatusDoesNotEnforceShipping(t *testing.T) {
	// ENVIADA without GUIA is only rejected when creating or importing.
	svc, st := newTestService(t)
	seed(t, svc, "2025_01", Candidate{FieldNumero: "3001234567"})
	out, err := svc.UpdateSimStatus(context.Background(), "2025_01", []Candidate{{FieldNumero: "3001234567", FieldEstadoSim: "ENVIADA"}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated)
	assert.Empty(t, out.Errors)
	assert.Equal(t, "ENVIADA", stored(t, st, "2025_01", "3001234567")[FieldEstadoSim])
}

func TestUpdateClientInfoPerRecordMessages(t *testing.T) {
	svc, st := newTestService(t)
	month := "2025_01"
	seed(t, svc, month, Candidate{FieldNumero: "3001234567", FieldNombre: "ana"})

	out, err := svc.UpdateClientInfo(context.Background(), month, []Candidate{
		{FieldNumero: "3001234567", FieldContacto1: "3101234567", FieldICCID: " 8957 0001 ", FieldRegistroSIM: true},
		{FieldNumero: "3009999999", FieldNombre: "nadie"},
		{FieldNumero: "3001234567", FieldContacto2: "99"},
		{FieldNumero: "3001234567", FieldEstadoSim: "ACTIVA"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated)
	assert.Equal(t, 2, out.Skipped)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, "3009999999: no encontrado, creación no permitida", out.Errors[0])
	assert.Contains(t, out.Errors[1], "3001234567: CONTACTO_2 inválido")

	rec := stored(t, st, month, "3001234567")
	assert.Equal(t, "ANA", rec[FieldNombre], "fields outside the payload stay untouched")
	assert.Equal(t, "3101234567", rec[FieldContacto1])
	assert.Equal(t, "8957 0001", rec[FieldICCID])
	assert.Equal(t, true, rec[FieldRegistroSIM])
	assert.Equal(t, "2025-09-14T12:00:00Z", rec[FieldCreatedAt])
}

func TestUpdateClientInfoRegistroUnknownClearsFlag(t *testing.T) {
	svc, st := newTestService(t)
	seed(t, svc, "2025_01", Candidate{FieldNumero: "3001234567"})
	out, err := svc.UpdateClientInfo(context.Background(), "2025_01", []Candidate{{FieldNumero: "3001234567", FieldRegistroSIM: "pendiente"}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated)
	assert.NotContains(t, stored(t, st, "2025_01", "3001234567"), FieldRegistroSIM)

	rec, _, err := svc.GetSale(context.Background(), "2025_01", "3001234567")
	require.NoError(t, err)
	assert.Equal(t, internal.RegistroUnknown, rec.RegistroSIM)
}

func TestUpdateEnumExplicitClear(t *testing.T) {
	svc, st := newTestService(t)
	seed(t, svc, "2025_01", Candidate{FieldNumero: "3001234567", FieldTipoVenta: "ppt"})
	out, err := svc.UpdateSalesType(context.Background(), "2025_01", []Candidate{{FieldNumero: "3001234567", FieldTipoVenta: "VACIO"}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated)
	assert.Equal(t, "", stored(t, st, "2025_01", "3001234567")[FieldTipoVenta])
}

func TestUpdatePortfolioAndGuides(t *testing.T) {
	svc, st := newTestService(t)
	month := "2025_01"
	seed(t, svc, month, Candidate{FieldNumero: "3001234567"})
	ctx := context.Background()

	out, err := svc.UpdatePortfolio(ctx, month, []Candidate{{FieldNumero: "3001234567", FieldSaldo: "$ 45.000", FieldAbono: float64(10000), FieldFechaCartera: "5/2/2025"}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated, out.Errors)

	out, err = svc.UpdateGuides(ctx, month, []Candidate{{FieldNumero: "3001234567", FieldGuia: "abc123", FieldEstadoGuia: "en tránsito", FieldDescripcionNovedad: "Dirección  errada"}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated, out.Errors)

	rec := stored(t, st, month, "3001234567")
	assert.Equal(t, float64(45000), rec[FieldSaldo])
	assert.Equal(t, float64(10000), rec[FieldAbono])
	assert.Equal(t, "2025-02-05", rec[FieldFechaCartera])
	assert.Equal(t, "ABC123", rec[FieldGuia])
	assert.Equal(t, "EN TRANSITO", rec[FieldEstadoGuia])
	assert.Equal(t, "Direccion errada", rec[FieldDescripcionNovedad])
}

func TestUpdateWithEmptyPayloadIsSkipped(t *testing.T) {
	svc, _ := newTestService(t)
	seed(t, svc, "2025_01", Candidate{FieldNumero: "3001234567"})
	out, err := svc.UpdateActivationDate(context.Background(), "2025_01", []Candidate{
		{FieldNumero: "3001234567"},
		{FieldNumero: "3001234567", FieldFechaActivacion: ""},
		{FieldNumero: "3001234567", FieldNombre: "otro campo"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Updated)
	assert.Equal(t, 3, out.Skipped)
	assert.Empty(t, out.Errors)
}

func TestImportSalesCreatesAndUpdates(t *testing.T) {
	svc, st := newTestService(t)
	month := "2025_01"
	ctx := context.Background()
	seed(t, svc, month, Candidate{FieldNumero: "3001234567", FieldGuia: "G1", FieldTransportadora: "TCC"})

	out, err := svc.ImportSales(ctx, month, []Candidate{
		{FieldNumero: "3001234567", FieldEstadoSim: "ENVIADA", FieldSaldo: float64(2000)},
		{FieldNumero: "3007654321", FieldNombre: "nuevo", FieldNovedadEnGestion: "en espera"},
		{FieldNumero: "3001112222", FieldEstadoSim: "ENVIADA"},
		{FieldNumero: "3003334444", FieldTipoVenta: "contado"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Added)
	assert.Equal(t, 1, out.Updated)
	require.Len(t, out.Errors, 2)
	assert.Contains(t, out.Errors[0], "ENVIADA")
	assert.Contains(t, out.Errors[1], "TIPO_VENTA")

	existing := stored(t, st, month, "3001234567")
	assert.Equal(t, "ENVIADA", existing[FieldEstadoSim])
	assert.Equal(t, float64(2000), existing[FieldSaldo])
	assert.Equal(t, "2025-09-14T12:00:00Z", existing[FieldCreatedAt])

	created := stored(t, st, month, "3007654321")
	assert.Equal(t, "NUEVO", created[FieldNombre])
	assert.Equal(t, "EN ESPERA", created[FieldNovedadEnGestion])
	assert.Equal(t, false, created[FieldRegistroSIM])
}

func TestCreatedAtIsImmutable(t *testing.T) {
	svc, st := newTestService(t)
	seed(t, svc, "2025_01", Candidate{FieldNumero: "3001234567"})
	later := NewService(st, zap.NewNop(), WithClock(func() time.Time { return fixedNow.Add(48 * time.Hour) }))
	_, err := later.ImportSales(context.Background(), "2025_01", []Candidate{{FieldNumero: "3001234567", FieldCreatedAt: "2000-01-01T00:00:00Z", FieldNombre: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "2025-09-14T12:00:00Z", stored(t, st, "2025_01", "3001234567")[FieldCreatedAt])
}

func TestStructuralPreconditions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddSales(ctx, "", []Candidate{{FieldNumero: "3001234567"}})
	assert.ErrorIs(t, err, ErrMonthRequired)
	_, err = svc.UpdateGuides(ctx, "2025_01", nil)
	assert.ErrorIs(t, err, ErrUpdatesRequired)
	_, err = svc.UpdateGuides(ctx, "2025.01", []Candidate{})
	assert.ErrorIs(t, err, ErrInvalidMonth)
	_, err = svc.Run(ctx, Operation("renameSales"), "2025_01", []Candidate{})
	assert.ErrorIs(t, err, ErrUnknownOperation)
	_, err = svc.DeleteSales(ctx, "2025_01", nil)
	assert.ErrorIs(t, err, ErrUpdatesRequired)

	out, err := svc.UpdateGuides(ctx, "2025_01", []Candidate{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Updated)
	assert.Empty(t, out.Errors)
}

func TestMissingNumeroInUpdateOnlyIsCountedSkip(t *testing.T) {
	svc, _ := newTestService(t)
	out, err := svc.UpdateManagementStatus(context.Background(), "2025_01", []Candidate{
		{FieldNovedadEnGestion: "CE"},
		{FieldNumero: "12", FieldNovedadEnGestion: "CE"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Skipped)
	require.Len(t, out.Errors, 2)
	assert.Contains(t, out.Errors[0], "sin NUMERO")
	assert.Contains(t, out.Errors[1], "NUMERO inválido")
}

type failingStore struct {
	store.Store
	failOn string
}

func (f failingStore) Update(ctx context.Context, path string, fields map[string]any) error {
	if path == f.failOn {
		return errors.New("disk full")
	}
	return f.Store.Update(ctx, path, fields)
}

func TestStoreFailureDoesNotAbortBatch(t *testing.T) {
	mem := store.NewMemory()
	seeder := NewService(mem, zap.NewNop())
	seed(t, seeder, "2025_01", Candidate{FieldNumero: "3001111111"}, Candidate{FieldNumero: "3002222222"})

	svc := NewService(failingStore{Store: mem, failOn: SalePath("2025_01", "3001111111")}, zap.NewNop())
	out, err := svc.UpdateIncome(context.Background(), "2025_01", []Candidate{
		{FieldNumero: "3001111111", FieldFechaIngreso: "2025-01-02"},
		{FieldNumero: "3002222222", FieldFechaIngreso: "2025-01-03"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "3001111111")
	assert.NotContains(t, out.Errors[0], "disk full")
}

func TestDeleteSales(t *testing.T) {
	svc, st := newTestService(t)
	seed(t, svc, "2025_01", Candidate{FieldNumero: "3001111111"}, Candidate{FieldNumero: "3002222222"})
	out, err := svc.DeleteSales(context.Background(), "2025_01", []string{"3001111111", "3009999999", "abc"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Deleted)
	require.Len(t, out.Errors, 2)
	assert.Contains(t, out.Errors[0], "3009999999")
	assert.Nil(t, stored(t, st, "2025_01", "3001111111"))
	assert.NotNil(t, stored(t, st, "2025_01", "3002222222"))
}

func TestListAndWatchMonth(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seed(t, svc, "Septiembre_2025", Candidate{FieldNumero: "3009000000"}, Candidate{FieldNumero: "3001000000"})
	seed(t, svc, "Agosto_2025", Candidate{FieldNumero: "3005000000"})

	months, err := svc.ListMonths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Agosto_2025", "Septiembre_2025"}, months)

	recs, err := svc.ListSales(ctx, "Septiembre_2025")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "3001000000", recs[0].Numero)
	assert.Equal(t, internal.RegistroNotRegistered, recs[0].RegistroSIM)

	var sizes []int
	stop, err := svc.WatchMonth(ctx, "Septiembre_2025", func(r []internal.SaleRecord) { sizes = append(sizes, len(r)) })
	require.NoError(t, err)
	seed(t, svc, "Septiembre_2025", Candidate{FieldNumero: "3005550000"})
	_, err = svc.UpdateSimStatus(ctx, "Septiembre_2025", []Candidate{{FieldNumero: "3005550000", FieldEstadoSim: "ACTIVA"}})
	require.NoError(t, err)
	seed(t, svc, "Agosto_2025", Candidate{FieldNumero: "3006660000"})
	stop()
	seed(t, svc, "Septiembre_2025", Candidate{FieldNumero: "3007770000"})
	assert.Equal(t, []int{2, 3, 3}, sizes)
}

type recorderFunc func(internal.ActivityEntry)

func (f recorderFunc) Record(_ context.Context, e internal.ActivityEntry) error {
	f(e)
	return nil
}

func TestRunRecordsActivity(t *testing.T) {
	var entries []internal.ActivityEntry
	svc, _ := newTestService(t, WithRecorder(recorderFunc(func(e internal.ActivityEntry) { entries = append(entries, e) })))
	seed(t, svc, "2025_01", Candidate{FieldNumero: "3001234567"})
	_, err := svc.DeleteSales(context.Background(), "2025_01", []string{"3001234567"})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "addSales", entries[0].Action)
	assert.Equal(t, 1, entries[0].Added)
	assert.Equal(t, "deleteSales", entries[1].Action)
	assert.Equal(t, 1, entries[1].Deleted)
}

func TestMonthKeyAndMonthFromText(t *testing.T) {
	assert.Equal(t, "Septiembre_2025", MonthKey(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Enero_2026", MonthKey(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)))

	got, ok := MonthFromText("Actualización guías Septiembre 2025")
	require.True(t, ok)
	assert.Equal(t, "Septiembre_2025", got)
	got, ok = MonthFromText("cartera de marzo de 2024")
	require.True(t, ok)
	assert.Equal(t, "Marzo_2024", got)
	_, ok = MonthFromText("sin mes")
	assert.False(t, ok)
}

func TestAllowedAndTemplates(t *testing.T) {
	assert.True(t, Allowed(internal.RoleAdmin, OpImportSales))
	assert.True(t, Allowed(internal.RoleUser, OpUpdateGuides))
	assert.False(t, Allowed(internal.RoleUser, OpAddSales))
	assert.False(t, Allowed(internal.RoleUser, OpDeleteSales))
	assert.False(t, Allowed(internal.Role("guest"), OpUpdateGuides))

	cols, err := TemplateColumns(OpUpdatePortfolio)
	require.NoError(t, err)
	assert.Equal(t, []string{"NUMERO", "FECHA_CARTERA", "SALDO", "ABONO"}, cols)
	_, err = TemplateColumns(Operation("x"))
	assert.ErrorIs(t, err, ErrUnknownOperation)
}
