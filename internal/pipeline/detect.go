package pipeline

import (
	"strings"

	"simventas/internal/sales"
	"simventas/internal/util"
)

// Intent is what a message asks for: a reconciling operation over its rows, or
// a scan match over its texts.
type Intent struct {
	Operation sales.Operation
	Scan      bool
	Month     string
	Reason    string
}

func (i Intent) Actionable() bool {
	return i.Scan || i.Operation != ""
}

// subjectRules are checked in order; the first keyword found in the subject wins.
var subjectRules = []struct {
	keywords []string
	op       sales.Operation
	scan     bool
}{
	{keywords: []string{"escaneo", "escaneado", "lectura", "registro sim", "registros sim"}, scan: true},
	{keywords: []string{"estado sim", "estados sim", "estado de sim"}, op: sales.OpUpdateSimStatus},
	{keywords: []string{"tipo de venta", "tipo venta"}, op: sales.OpUpdateSalesType},
	{keywords: []string{"novedad en gestion", "novedades en gestion", "gestion"}, op: sales.OpUpdateManagementStatus},
	{keywords: []string{"guia", "guias", "envio", "envios", "transportadora"}, op: sales.OpUpdateGuides},
	{keywords: []string{"cartera", "saldo", "saldos", "abono"}, op: sales.OpUpdatePortfolio},
	{keywords: []string{"activacion", "activaciones"}, op: sales.OpUpdateActivationDate},
	{keywords: []string{"ingreso", "ingresos"}, op: sales.OpUpdateIncome},
	{keywords: []string{"cliente", "clientes", "contacto"}, op: sales.OpUpdateClientInfo},
	{keywords: []string{"importar", "importacion", "base completa"}, op: sales.OpImportSales},
	{keywords: []string{"ventas nuevas", "nuevas ventas", "venta nueva", "nuevas lineas"}, op: sales.OpAddSales},
}

// DetectIntent reads the operation and month from the subject. Rows without
// any keyword but with a spreadsheet attachment default to importSales.
func DetectIntent(subject string, attachmentNames []string, hasRows bool) Intent {
	norm := " " + strings.ToLower(util.CollapseSpaces(util.StripAccents(subject))) + " "
	month, _ := sales.MonthFromText(subject)

	for _, rule := range subjectRules {
		for _, kw := range rule.keywords {
			if strings.Contains(norm, " "+kw+" ") || strings.Contains(norm, " "+kw+":") {
				return Intent{Operation: rule.op, Scan: rule.scan, Month: month, Reason: "subject:" + kw}
			}
		}
	}

	if hasRows {
		for _, name := range attachmentNames {
			if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
				return Intent{Operation: sales.OpImportSales, Month: month, Reason: "attachment:xlsx"}
			}
		}
	}
	return Intent{Month: month, Reason: "no_match"}
}
