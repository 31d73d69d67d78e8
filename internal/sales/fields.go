package sales

import "strings"

const (
	FieldNumero             = "NUMERO"
	FieldICCID              = "ICCID"
	FieldRegistroSIM        = "REGISTRO_SIM"
	FieldFechaIngreso       = "FECHA_INGRESO"
	FieldFechaActivacion    = "FECHA_ACTIVACION"
	FieldFechaCartera       = "FECHA_CARTERA"
	FieldFechaHoraReporte   = "FECHA_HORA_REPORTE"
	FieldEstadoSim          = "ESTADO_SIM"
	FieldTipoVenta          = "TIPO_VENTA"
	FieldNovedadEnGestion   = "NOVEDAD_EN_GESTION"
	FieldContacto1          = "CONTACTO_1"
	FieldContacto2          = "CONTACTO_2"
	FieldNombre             = "NOMBRE"
	FieldSaldo              = "SALDO"
	FieldAbono              = "ABONO"
	FieldGuia               = "GUIA"
	FieldTransportadora     = "TRANSPORTADORA"
	FieldEstadoGuia         = "ESTADO_GUIA"
	FieldNovedad            = "NOVEDAD"
	FieldDescripcionNovedad = "DESCRIPCION_NOVEDAD"
	FieldCreatedAt          = "createdAt"
)

const (
	EstadoActiva        = "ACTIVA"
	EstadoInactiva      = "INACTIVA"
	EstadoEnviada       = "ENVIADA"
	EstadoOtroCanal     = "OTRO CANAL"
	EstadoSinInfoClient = "No se encontro informacion del cliente"
)

// AllFields is the full sale record column order, key first.
var AllFields = []string{
	FieldNumero, FieldICCID, FieldRegistroSIM, FieldFechaIngreso, FieldFechaActivacion,
	FieldEstadoSim, FieldTipoVenta, FieldNovedadEnGestion, FieldNombre, FieldContacto1,
	FieldContacto2, FieldFechaCartera, FieldSaldo, FieldAbono, FieldGuia, FieldTransportadora,
	FieldEstadoGuia, FieldNovedad, FieldDescripcionNovedad, FieldFechaHoraReporte,
}

// EnumSet is a closed set of canonical values for one field.
type EnumSet struct {
	Field  string
	values []string
}

func NewEnumSet(field string, values ...string) EnumSet {
	return EnumSet{Field: field, values: append([]string(nil), values...)}
}

func (e EnumSet) Has(v string) bool {
	for _, allowed := range e.values {
		if allowed == v {
			return true
		}
	}
	return false
}

func (e EnumSet) Values() []string {
	return append([]string(nil), e.values...)
}

func (e EnumSet) String() string {
	return strings.Join(e.values, ", ")
}

// Catalog carries the enumerations the validator checks against.
type Catalog struct {
	EstadoSim        EnumSet
	TipoVenta        EnumSet
	NovedadEnGestion EnumSet
}

func DefaultCatalog() Catalog {
	return Catalog{
		EstadoSim: NewEnumSet(FieldEstadoSim,
			EstadoActiva, EstadoInactiva, EstadoEnviada, EstadoOtroCanal, EstadoSinInfoClient),
		TipoVenta: NewEnumSet(FieldTipoVenta,
			"portabilidad", "linea nueva", "ppt"),
		NovedadEnGestion: NewEnumSet(FieldNovedadEnGestion,
			"RECHAZADO", "CE", "EN ESPERA", "ENVIO PENDIENTE", "SIN CONTACTO", "NO LLEGO"),
	}
}
