package pipeline

import "testing"

func TestParseHTMLTables(t *testing.T) {
	html := `<html><body><p>Buen dia</p>
<table>
<tr><th>NUMERO</th><th>Estado  SIM</th><th>Guia</th></tr>
<tr><td>300 123 4567</td><td>enviada</td><td> G-1 </td></tr>
<tr><td></td><td></td><td></td></tr>
<tr><td>3109876543</td><td>activa</td></tr>
</table>
<table><tr><td>solo una fila</td></tr></table>
</body></html>`

	rows := parseHTMLTables(html)
	if len(rows) != 2 {
		t.Fatalf("len=%d rows=%v", len(rows), rows)
	}
	if rows[0]["NUMERO"] != "300 123 4567" || rows[0]["Estado SIM"] != "enviada" || rows[0]["Guia"] != "G-1" {
		t.Fatalf("row0=%v", rows[0])
	}
	if _, ok := rows[1]["Guia"]; ok {
		t.Fatalf("short row should not carry Guia: %v", rows[1])
	}
}

func TestCleanTextDropsNoise(t *testing.T) {
	text := "Hola equipo\r\n8957 1012 3456 7890 123\n\n> mensaje anterior\nCordialmente,\nTel: 555\nhttp://example.com\n--\n"
	got := cleanText(text)
	want := "Hola equipo\n8957 1012 3456 7890 123"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		atts    []string
		rows    bool
		op      string
		scan    bool
		month   string
	}{
		{"estado sim with month", "Actualización Estado SIM septiembre 2025", nil, true, "updateSimStatus", false, "Septiembre_2025"},
		{"guias", "RE: Guias del dia", nil, true, "updateGuides", false, ""},
		{"scan keywords", "Escaneo registro SIM - Octubre de 2025", nil, false, "", true, "Octubre_2025"},
		{"tipo de venta", "Tipo de venta: agosto 2025", nil, true, "updateSalesType", false, "Agosto_2025"},
		{"cartera", "Cartera semana 3", nil, true, "updatePortfolio", false, ""},
		{"xlsx fallback", "Reporte", []string{"base.XLSX"}, true, "importSales", false, ""},
		{"xlsx without rows", "Reporte", []string{"base.xlsx"}, false, "", false, ""},
		{"nothing", "Hola", nil, false, "", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectIntent(tc.subject, tc.atts, tc.rows)
			if string(got.Operation) != tc.op || got.Scan != tc.scan || got.Month != tc.month {
				t.Fatalf("DetectIntent(%q) = %+v", tc.subject, got)
			}
			if got.Actionable() != (tc.op != "" || tc.scan) {
				t.Fatalf("actionable mismatch: %+v", got)
			}
		})
	}
}
