package sales

import "testing"

func TestCanonicalHeaderSpellings(t *testing.T) {
	cases := map[string]string{
		"REGISTRO SIM":        FieldRegistroSIM,
		"REGISTRO_SIM":        FieldRegistroSIM,
		"registro  sim":       FieldRegistroSIM,
		"Número":              FieldNumero,
		"numero":              FieldNumero,
		"Fecha de Activación": FieldFechaActivacion,
		"Contacto 1":          FieldContacto1,
		"CONTACTO-2":          FieldContacto2,
		"Estado de la SIM":    FieldEstadoSim,
		"Tipo de venta":       FieldTipoVenta,
		"Descripción Novedad": FieldDescripcionNovedad,
	}
	for header, want := range cases {
		got, ok := CanonicalHeader(header)
		if !ok || got != want {
			t.Fatalf("CanonicalHeader(%q) = %q,%v want %q", header, got, ok, want)
		}
	}
	if _, ok := CanonicalHeader("Comentario interno"); ok {
		t.Fatal("unknown header matched")
	}
}

func TestProjectRowSameFieldFromBothSpellings(t *testing.T) {
	a, okA := ProjectRow(map[string]any{"Numero": "3001234567", "REGISTRO SIM": "SI"})
	b, okB := ProjectRow(map[string]any{"NUMERO": "3001234567", "REGISTRO_SIM": "SI"})
	if !okA || !okB {
		t.Fatal("rows dropped")
	}
	if a[FieldRegistroSIM] != "SI" || b[FieldRegistroSIM] != "SI" {
		t.Fatalf("got %v and %v", a, b)
	}
}

func TestProjectRowCoercion(t *testing.T) {
	row := map[string]any{
		"NUMERO":         float64(3001234567),
		"Nombre":         "  Ana Gómez ",
		"Fecha Ingreso":  float64(45283),
		"Saldo":          float64(15000),
		"Guia":           float64(123456),
		"Observaciones":  "",
		"Columna extra":  "ignorada",
		"Contacto 1":     " 310 123 4567 ",
		"Estado SIM":     nil,
		"FECHA_CARTERA ": " 23/12/2025 ",
	}
	c, ok := ProjectRow(row)
	if !ok {
		t.Fatal("row dropped")
	}
	if c[FieldNumero] != "3001234567" {
		t.Fatalf("numero: %v", c[FieldNumero])
	}
	if c[FieldNombre] != "Ana Gómez" {
		t.Fatalf("nombre: %q", c[FieldNombre])
	}
	if c[FieldFechaIngreso] != float64(45283) {
		t.Fatalf("dates stay raw: %v", c[FieldFechaIngreso])
	}
	if c[FieldSaldo] != float64(15000) {
		t.Fatalf("amounts stay raw: %v", c[FieldSaldo])
	}
	if c[FieldGuia] != "123456" {
		t.Fatalf("text fields become strings: %v", c[FieldGuia])
	}
	if c[FieldFechaCartera] != "23/12/2025" {
		t.Fatalf("raw strings are trimmed: %q", c[FieldFechaCartera])
	}
	if c[FieldContacto1] != "310 123 4567" {
		t.Fatalf("contacto: %q", c[FieldContacto1])
	}
	for _, f := range []string{FieldDescripcionNovedad, FieldEstadoSim} {
		if _, present := c[f]; present {
			t.Fatalf("empty cell %s projected", f)
		}
	}
	if len(c) != 7 {
		t.Fatalf("unexpected fields: %v", c)
	}
}

func TestProjectRowBareEstadoIsAmbiguous(t *testing.T) {
	if f, ok := CanonicalHeader("Estado"); ok {
		t.Fatalf("bare Estado mapped to %s", f)
	}
	c, ok := ProjectRow(map[string]any{"NUMERO": "3001234567", "ESTADO": "ENTREGADO", "Estado Guia": "EN REPARTO"})
	if !ok {
		t.Fatal("row dropped")
	}
	if _, present := c[FieldEstadoSim]; present {
		t.Fatalf("ESTADO fed ESTADO_SIM: %v", c)
	}
	if c[FieldEstadoGuia] != "EN REPARTO" {
		t.Fatalf("estado guia: %v", c[FieldEstadoGuia])
	}
}

func TestProjectRowsDropsMissingOrInvalidNumero(t *testing.T) {
	rows := []map[string]any{
		{"NUMERO": "3001234567"},
		{"Nombre": "sin numero"},
		{"NUMERO": "12345"},
		{"Celular": "300-765-4321"},
	}
	got, dropped := ProjectRows(rows)
	if dropped != 2 || len(got) != 2 {
		t.Fatalf("got %d rows, %d dropped", len(got), dropped)
	}
	if got[1][FieldNumero] != "3007654321" {
		t.Fatalf("alias header: %v", got[1])
	}
}
