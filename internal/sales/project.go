package sales

import (
	"sort"
	"strings"

	"simventas/internal/util"
)

// headerAliases lists the accepted spellings of each field, already in
// util.CanonicalKey form. The first non-empty match wins.
var headerAliases = []struct {
	field   string
	aliases []string
	raw     bool
}{
	{FieldNumero, []string{"NUMERO", "NUMERO_CELULAR", "NUMERO_DE_LINEA", "NUMERO_LINEA", "CELULAR", "LINEA", "TELEFONO", "MSISDN", "MIN"}, true},
	{FieldICCID, []string{"ICCID", "ICC", "ICC_ID", "SERIAL_SIM", "SIM_SERIAL"}, false},
	{FieldRegistroSIM, []string{"REGISTRO_SIM", "REGISTRO", "SIM_REGISTRADA", "REGISTRADA"}, true},
	{FieldFechaIngreso, []string{"FECHA_INGRESO", "FECHA_DE_INGRESO", "INGRESO", "FECHA_VENTA"}, true},
	{FieldFechaActivacion, []string{"FECHA_ACTIVACION", "FECHA_DE_ACTIVACION", "ACTIVACION"}, true},
	{FieldFechaCartera, []string{"FECHA_CARTERA", "FECHA_DE_CARTERA"}, true},
	{FieldFechaHoraReporte, []string{"FECHA_HORA_REPORTE", "FECHA_Y_HORA_REPORTE", "FECHA_HORA_DE_REPORTE", "FECHA_REPORTE"}, true},
	{FieldEstadoSim, []string{"ESTADO_SIM", "ESTADO_DE_SIM", "ESTADO_DE_LA_SIM"}, false},
	{FieldTipoVenta, []string{"TIPO_VENTA", "TIPO_DE_VENTA"}, false},
	{FieldNovedadEnGestion, []string{"NOVEDAD_EN_GESTION", "NOVEDAD_GESTION", "GESTION"}, false},
	{FieldContacto1, []string{"CONTACTO_1", "CONTACTO1", "CONTACTO", "TELEFONO_CONTACTO"}, false},
	{FieldContacto2, []string{"CONTACTO_2", "CONTACTO2"}, false},
	{FieldNombre, []string{"NOMBRE", "NOMBRE_CLIENTE", "NOMBRE_DEL_CLIENTE", "CLIENTE", "NOMBRE_COMPLETO"}, false},
	{FieldSaldo, []string{"SALDO"}, true},
	{FieldAbono, []string{"ABONO"}, true},
	{FieldGuia, []string{"GUIA", "NUMERO_GUIA", "NUMERO_DE_GUIA", "NO_GUIA"}, false},
	{FieldTransportadora, []string{"TRANSPORTADORA", "EMPRESA_TRANSPORTADORA", "TRANSPORTE"}, false},
	{FieldEstadoGuia, []string{"ESTADO_GUIA", "ESTADO_DE_GUIA", "ESTADO_ENVIO"}, false},
	{FieldNovedad, []string{"NOVEDAD", "NOVEDAD_GUIA"}, false},
	{FieldDescripcionNovedad, []string{"DESCRIPCION_NOVEDAD", "DESCRIPCION_DE_NOVEDAD", "DESCRIPCION", "OBSERVACIONES", "OBSERVACION"}, false},
}

// CanonicalHeader maps a header spelling to its field name. ok is false for
// headers no field accepts.
func CanonicalHeader(header string) (string, bool) {
	key := util.CanonicalKey(header)
	for _, h := range headerAliases {
		for _, a := range h.aliases {
			if a == key {
				return h.field, true
			}
		}
	}
	return "", false
}

// ProjectRow maps an arbitrary header->value row onto the canonical fields.
// Text values are trimmed strings; dates, amounts and the registration flag
// stay raw. Rows without a usable NUMERO are dropped (ok false).
func ProjectRow(row map[string]any) (Candidate, bool) {
	byKey := canonicalRow(row)
	out := Candidate{}
	for _, h := range headerAliases {
		for _, a := range h.aliases {
			v, ok := byKey[a]
			if !ok {
				continue
			}
			if h.raw {
				if s, isStr := v.(string); isStr {
					v = strings.TrimSpace(s)
				}
				out[h.field] = v
			} else {
				s, _ := stringValue(v)
				out[h.field] = strings.TrimSpace(s)
			}
			break
		}
	}

	raw, ok := out[FieldNumero]
	if !ok {
		return nil, false
	}
	numero, _ := NormalizePhone(raw)
	if !ValidNumero(numero) {
		return nil, false
	}
	out[FieldNumero] = numero
	return out, true
}

// ProjectRows projects every row and reports how many were dropped.
func ProjectRows(rows []map[string]any) ([]Candidate, int) {
	out := make([]Candidate, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		c, ok := ProjectRow(row)
		if !ok {
			dropped++
			continue
		}
		out = append(out, c)
	}
	return out, dropped
}

// canonicalRow folds the headers and keeps non-empty cells only, so an empty
// cell never clears a stored value. Headers are visited in sorted order to keep
// duplicate spellings deterministic.
func canonicalRow(row map[string]any) map[string]any {
	headers := make([]string, 0, len(row))
	for h := range row {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	out := make(map[string]any, len(row))
	for _, h := range headers {
		v := row[h]
		if isEmptyCell(v) {
			continue
		}
		key := util.CanonicalKey(h)
		if key == "" {
			continue
		}
		if _, seen := out[key]; !seen {
			out[key] = v
		}
	}
	return out
}

func isEmptyCell(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
