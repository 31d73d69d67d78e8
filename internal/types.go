package internal

import "encoding/json"

// RegistroSIM is the SIM registration flag. Unknown is a state of its own
// (pending, shown as such) and is stored by leaving the field out.
type RegistroSIM int

const (
	RegistroUnknown RegistroSIM = iota
	RegistroNotRegistered
	RegistroRegistered
)

func (r RegistroSIM) String() string {
	switch r {
	case RegistroRegistered:
		return "Registered"
	case RegistroNotRegistered:
		return "NotRegistered"
	default:
		return "Unknown"
	}
}

// StoreValue is the document form of the flag: true, false or nil (absent).
func (r RegistroSIM) StoreValue() any {
	switch r {
	case RegistroRegistered:
		return true
	case RegistroNotRegistered:
		return false
	default:
		return nil
	}
}

func RegistroFromValue(v any) RegistroSIM {
	b, ok := v.(bool)
	if !ok {
		return RegistroUnknown
	}
	if b {
		return RegistroRegistered
	}
	return RegistroNotRegistered
}

func (r RegistroSIM) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.StoreValue())
}

func (r *RegistroSIM) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = RegistroFromValue(v)
	return nil
}

// SaleRecord is one telephone-line sale inside a month collection, keyed by NUMERO.
type SaleRecord struct {
	Numero             string      `json:"NUMERO"`
	ICCID              string      `json:"ICCID"`
	RegistroSIM        RegistroSIM `json:"REGISTRO_SIM"`
	FechaIngreso       string      `json:"FECHA_INGRESO"`
	FechaActivacion    string      `json:"FECHA_ACTIVACION"`
	FechaCartera       string      `json:"FECHA_CARTERA"`
	FechaHoraReporte   string      `json:"FECHA_HORA_REPORTE"`
	EstadoSim          string      `json:"ESTADO_SIM"`
	TipoVenta          string      `json:"TIPO_VENTA"`
	NovedadEnGestion   string      `json:"NOVEDAD_EN_GESTION"`
	Contacto1          string      `json:"CONTACTO_1"`
	Contacto2          string      `json:"CONTACTO_2"`
	Nombre             string      `json:"NOMBRE"`
	Saldo              *float64    `json:"SALDO,omitempty"`
	Abono              *float64    `json:"ABONO,omitempty"`
	Guia               string      `json:"GUIA"`
	Transportadora     string      `json:"TRANSPORTADORA"`
	EstadoGuia         string      `json:"ESTADO_GUIA"`
	Novedad            string      `json:"NOVEDAD"`
	DescripcionNovedad string      `json:"DESCRIPCION_NOVEDAD"`
	CreatedAt          string      `json:"createdAt,omitempty"`
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	UID        string `json:"-"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	CreatedAt  string `json:"createdAt"`
	LastActive string `json:"lastActive"`
}

// ActivityEntry is one append-only audit line under user_activity_logs.
type ActivityEntry struct {
	Action    string `json:"action"`
	Month     string `json:"month,omitempty"`
	Added     int    `json:"added"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
	Deleted   int    `json:"deleted"`
	Errors    int    `json:"errors"`
	Source    string `json:"source,omitempty"`
	Timestamp string `json:"timestamp"`
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// InboxMessage is the stored metadata of one fetched e-mail, keyed by raw hash.
type InboxMessage struct {
	Hash       string `json:"-"`
	Provider   string `json:"provider"`
	MessageID  string `json:"messageId"`
	Subject    string `json:"subject"`
	Sender     string `json:"sender"`
	ReceivedAt string `json:"receivedAt"`
	Status     string `json:"status"`
	RawRef     string `json:"rawRef"`
	UpdatedAt  string `json:"updatedAt"`
}

type MatchStatus string

const (
	MatchOK       MatchStatus = "OK"
	MatchReview   MatchStatus = "REVIEW"
	MatchNotFound MatchStatus = "NOT_FOUND"
)

type MatchReason string

const (
	ReasonICCID  MatchReason = "iccid"
	ReasonNumero MatchReason = "numero"
	ReasonPrefix MatchReason = "iccid_prefix"
	ReasonFuzzy  MatchReason = "fuzzy"
	ReasonNone   MatchReason = "none"
)

type ScanCandidate struct {
	Numero string  `json:"numero"`
	ICCID  string  `json:"iccid"`
	Score  float64 `json:"score"`
}

// ScanMatch is the verdict for one number read off a scanned label or document.
type ScanMatch struct {
	Token      string          `json:"token"`
	Status     MatchStatus     `json:"status"`
	Confidence float64         `json:"confidence"`
	Reason     MatchReason     `json:"reason"`
	Numero     string          `json:"numero,omitempty"`
	ICCID      string          `json:"iccid,omitempty"`
	Candidates []ScanCandidate `json:"candidates"`
}
