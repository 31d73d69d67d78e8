package sales

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var reNumero = regexp.MustCompile(`^3\d{9}$`)

// ErrShippingIncomplete rejects a record marked ENVIADA that has no tracking data.
var ErrShippingIncomplete = errors.New("ESTADO_SIM ENVIADA requiere GUIA y TRANSPORTADORA")

// FieldError is a value the validator refused. Allowed is set for enumeration
// failures, Reason for format failures.
type FieldError struct {
	Field   string
	Value   string
	Allowed EnumSet
	Reason  string
}

func (e *FieldError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s inválido %q (%s)", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s inválido %q (permitidos: %s)", e.Field, e.Value, e.Allowed)
}

// cause groups failures of the same kind on the same field.
func (e *FieldError) cause() string {
	if e.Reason != "" {
		return e.Field + ":" + e.Reason
	}
	return e.Field
}

// ValidNumero reports whether s is a 10-digit mobile number starting with 3.
func ValidNumero(s string) bool {
	return reNumero.MatchString(s)
}

// ValidContacto is ValidNumero that also accepts an empty contact.
func ValidContacto(s string) bool {
	return s == "" || ValidNumero(s)
}

func ValidateEnum(set EnumSet, v string) error {
	if v == "" || set.Has(v) {
		return nil
	}
	return &FieldError{Field: set.Field, Value: v, Allowed: set}
}

func ValidateContacto(field, v string) error {
	if ValidContacto(v) {
		return nil
	}
	return &FieldError{Field: field, Value: v, Reason: "debe tener 10 dígitos y empezar por 3"}
}

// CheckShipping enforces that ENVIADA records carry GUIA and TRANSPORTADORA.
func CheckShipping(fields map[string]any) error {
	if s, _ := fields[FieldEstadoSim].(string); s != EstadoEnviada {
		return nil
	}
	if blank(fields[FieldGuia]) || blank(fields[FieldTransportadora]) {
		return ErrShippingIncomplete
	}
	return nil
}

func blank(v any) bool {
	s, ok := v.(string)
	return !ok || strings.TrimSpace(s) == ""
}
