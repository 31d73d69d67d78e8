package sales

import (
	"errors"
	"fmt"

	"simventas/internal"
)

var ErrUnknownOperation = errors.New("unknown sales operation")

type Operation string

const (
	OpAddSales               Operation = "addSales"
	OpImportSales            Operation = "importSales"
	OpUpdateClientInfo       Operation = "updateClientInfo"
	OpUpdateActivationDate   Operation = "updateActivationDate"
	OpUpdateSimStatus        Operation = "updateSimStatus"
	OpUpdateSalesType        Operation = "updateSalesType"
	OpUpdateManagementStatus Operation = "updateManagementStatus"
	OpUpdatePortfolio        Operation = "updatePortfolio"
	OpUpdateGuides           Operation = "updateGuides"
	OpUpdateIncome           Operation = "updateIncome"
	OpDeleteSales            Operation = "deleteSales"
)

// Operations lists the reconciling operations in menu order.
var Operations = []Operation{
	OpAddSales, OpImportSales, OpUpdateClientInfo, OpUpdateActivationDate, OpUpdateSimStatus,
	OpUpdateSalesType, OpUpdateManagementStatus, OpUpdatePortfolio, OpUpdateGuides, OpUpdateIncome,
}

func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	if Operation(s) == OpDeleteSales {
		return OpDeleteSales, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

var userOperations = map[Operation]bool{
	OpUpdateClientInfo:       true,
	OpUpdateSimStatus:        true,
	OpUpdateManagementStatus: true,
	OpUpdateGuides:           true,
}

// Allowed reports whether role may run op. Admins run everything.
func Allowed(role internal.Role, op Operation) bool {
	switch role {
	case internal.RoleAdmin:
		return true
	case internal.RoleUser:
		return userOperations[op]
	}
	return false
}

type Policy int

const (
	UpdateOnly Policy = iota
	CreateOnly
	CreateOrUpdate
)

// FieldRule turns one raw candidate value into its stored form. Normalize
// returns false when the value means "no change"; Validate may be nil.
type FieldRule struct {
	Name      string
	Normalize func(v any) (any, bool)
	Validate  func(v any) error
}

// Category is the declarative description of one reconciling operation.
type Category struct {
	Op     Operation
	Fields []FieldRule
	Policy Policy
	// Aggregate collapses same-cause failures into one counted message.
	Aggregate bool
	// RequireShipping applies CheckShipping to created and imported records.
	RequireShipping bool
}

func (c Category) CanCreate() bool {
	return c.Policy != UpdateOnly
}

func (c Category) FieldNames() []string {
	out := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		out = append(out, f.Name)
	}
	return out
}

// payload applies the rules to the fields of cand this category owns.
func (c Category) payload(cand Candidate) (map[string]any, []*FieldError) {
	out := map[string]any{}
	var problems []*FieldError
	for _, rule := range c.Fields {
		raw, ok := cand[rule.Name]
		if !ok {
			continue
		}
		v, ok := rule.Normalize(raw)
		if !ok {
			continue
		}
		if rule.Validate != nil {
			if err := rule.Validate(v); err != nil {
				var fe *FieldError
				if !errors.As(err, &fe) {
					fe = &FieldError{Field: rule.Name, Value: fmt.Sprint(v), Reason: err.Error()}
				}
				problems = append(problems, fe)
				continue
			}
		}
		out[rule.Name] = v
	}
	return out, problems
}

func textRule(name string) FieldRule {
	return FieldRule{Name: name, Normalize: func(v any) (any, bool) { return NormalizeText(v) }}
}

func upperRule(name string) FieldRule {
	return FieldRule{Name: name, Normalize: func(v any) (any, bool) { return NormalizeUpper(v) }}
}

func nameRule(name string) FieldRule {
	return FieldRule{Name: name, Normalize: func(v any) (any, bool) { return NormalizeName(v) }}
}

func dateRule(name string) FieldRule {
	return FieldRule{Name: name, Normalize: func(v any) (any, bool) { return NormalizeDate(v) }}
}

func contactRule(name string) FieldRule {
	return FieldRule{
		Name:      name,
		Normalize: func(v any) (any, bool) { return NormalizePhone(v) },
		Validate:  func(v any) error { return ValidateContacto(name, v.(string)) },
	}
}

func enumRule(set EnumSet, normalize func(string) string) FieldRule {
	return FieldRule{
		Name: set.Field,
		Normalize: func(v any) (any, bool) {
			s, ok := stringValue(v)
			if !ok {
				return nil, false
			}
			return normalize(s), true
		},
		Validate: func(v any) error { return ValidateEnum(set, v.(string)) },
	}
}

// amountRule stores numbers; an empty cell clears the field.
func amountRule(name string) FieldRule {
	return FieldRule{
		Name: name,
		Normalize: func(v any) (any, bool) {
			if v == nil {
				return nil, false
			}
			if s, ok := v.(string); ok && s == "" {
				return nil, true
			}
			if f, ok := NormalizeAmount(v); ok {
				return f, true
			}
			s, _ := stringValue(v)
			return s, true
		},
		Validate: func(v any) error {
			if s, ok := v.(string); ok {
				return &FieldError{Field: name, Value: s, Reason: "no es un valor numérico"}
			}
			return nil
		},
	}
}

// registroRule stores true, false or nothing (Unknown).
func registroRule() FieldRule {
	return FieldRule{
		Name: FieldRegistroSIM,
		Normalize: func(v any) (any, bool) {
			if v == nil {
				return nil, false
			}
			r, ok := NormalizeRegistroSIM(v)
			if !ok {
				s, _ := stringValue(v)
				return s, true
			}
			return r.StoreValue(), true
		},
		Validate: func(v any) error {
			if s, ok := v.(string); ok {
				return &FieldError{Field: FieldRegistroSIM, Value: s, Reason: "use SI, NO o vacío"}
			}
			return nil
		},
	}
}

func buildCategories(cat Catalog) map[Operation]Category {
	var (
		iccid          = textRule(FieldICCID)
		registro       = registroRule()
		fechaIngreso   = dateRule(FieldFechaIngreso)
		fechaActiv     = dateRule(FieldFechaActivacion)
		fechaCartera   = dateRule(FieldFechaCartera)
		fechaReporte   = dateRule(FieldFechaHoraReporte)
		estadoSim      = enumRule(cat.EstadoSim, NormalizeEstadoSim)
		tipoVenta      = enumRule(cat.TipoVenta, NormalizeTipoVenta)
		novedadGestion = enumRule(cat.NovedadEnGestion, NormalizeNovedadEnGestion)
		nombre         = nameRule(FieldNombre)
		contacto1      = contactRule(FieldContacto1)
		contacto2      = contactRule(FieldContacto2)
		saldo          = amountRule(FieldSaldo)
		abono          = amountRule(FieldAbono)
		guia           = upperRule(FieldGuia)
		transportadora = upperRule(FieldTransportadora)
		estadoGuia     = upperRule(FieldEstadoGuia)
		novedad        = upperRule(FieldNovedad)
		descripcion    = textRule(FieldDescripcionNovedad)
	)

	list := []Category{
		{
			Op:     OpAddSales,
			Policy: CreateOnly,
			Fields: []FieldRule{
				iccid, fechaIngreso, registro, estadoSim, tipoVenta, guia, transportadora,
				nombre, contacto1, contacto2,
			},
			RequireShipping: true,
		},
		{
			Op:     OpImportSales,
			Policy: CreateOrUpdate,
			Fields: []FieldRule{
				iccid, registro, fechaIngreso, fechaActiv, estadoSim, tipoVenta, novedadGestion,
				nombre, contacto1, contacto2, fechaCartera, saldo, abono, guia, transportadora,
				estadoGuia, novedad, descripcion, fechaReporte,
			},
			RequireShipping: true,
		},
		{Op: OpUpdateClientInfo, Fields: []FieldRule{nombre, contacto1, contacto2, iccid, registro}},
		{Op: OpUpdateActivationDate, Fields: []FieldRule{fechaActiv}},
		{Op: OpUpdateSimStatus, Fields: []FieldRule{estadoSim}, Aggregate: true},
		{Op: OpUpdateSalesType, Fields: []FieldRule{tipoVenta}, Aggregate: true},
		{Op: OpUpdateManagementStatus, Fields: []FieldRule{novedadGestion}, Aggregate: true},
		{Op: OpUpdatePortfolio, Fields: []FieldRule{fechaCartera, saldo, abono}},
		{
			Op:     OpUpdateGuides,
			Fields: []FieldRule{guia, transportadora, estadoGuia, novedad, descripcion, fechaReporte},
		},
		{Op: OpUpdateIncome, Fields: []FieldRule{fechaIngreso}},
	}

	out := make(map[Operation]Category, len(list))
	for _, c := range list {
		out[c.Op] = c
	}
	return out
}

// TemplateColumns is the header row of the download template for op.
func TemplateColumns(op Operation) ([]string, error) {
	if op == OpDeleteSales {
		return []string{FieldNumero}, nil
	}
	c, ok := buildCategories(DefaultCatalog())[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	return append([]string{FieldNumero}, c.FieldNames()...), nil
}
