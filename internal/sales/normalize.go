package sales

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"simventas/internal"
	"simventas/internal/util"
)

const (
	dateLayout = "2006-01-02"

	// Spreadsheet serials count days from 1899-12-30; 25569 of them is 1970-01-01.
	serialUnixOffset = 25569
	serialMinimum    = 20000
	msPerDay         = 86400000

	clearToken = "VACIO"
)

var (
	reDayFirst  = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	reYearFirst = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)
	reSerial    = regexp.MustCompile(`^\d+(\.\d+)?$`)

	fallbackDateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2/1/2006 15:04:05",
		"2/1/2006 15:04",
		"2 Jan 2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"Mon Jan 2 2006",
	}

	estadoSimSpellings = map[string]string{
		"NO SE ENCONTRO INFORMACION DEL CLIENTE": EstadoSinInfoClient,
	}
)

// NormalizeDate converts a date-like value to YYYY-MM-DD. The bool is false when
// the value carries no date at all (nil, empty); strings that match no known
// shape come back unchanged.
func NormalizeDate(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case time.Time:
		if t.IsZero() {
			return "", false
		}
		return t.Format(dateLayout), true
	case *time.Time:
		if t == nil {
			return "", false
		}
		return NormalizeDate(*t)
	}

	if f, ok := numberValue(v); ok {
		if f > serialMinimum {
			return serialDate(f), true
		}
		if f == 0 {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}

	s, ok := stringValue(v)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if reSerial.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > serialMinimum {
			return serialDate(f), true
		}
	}
	if m := reDayFirst.FindStringSubmatch(s); m != nil {
		return isoDate(m[3], m[2], m[1]), true
	}
	if m := reYearFirst.FindStringSubmatch(s); m != nil {
		return isoDate(m[1], m[2], m[3]), true
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout), true
		}
	}
	return s, true
}

func serialDate(serial float64) string {
	ms := math.Round((serial - serialUnixOffset) * msPerDay)
	return time.UnixMilli(int64(ms)).UTC().Format(dateLayout)
}

func isoDate(y, m, d string) string {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func NormalizeEstadoSim(v string) string {
	return normalizeEnum(v, strings.ToUpper, estadoSimSpellings)
}

func NormalizeTipoVenta(v string) string {
	return normalizeEnum(v, strings.ToLower, nil)
}

func NormalizeNovedadEnGestion(v string) string {
	return normalizeEnum(v, strings.ToUpper, nil)
}

// normalizeEnum keeps "" as the explicit clear and maps the VACIO token to it.
// Unknown tokens are only folded; rejecting them is the validator's job.
func normalizeEnum(v string, fold func(string) string, spellings map[string]string) string {
	if v == "" {
		return ""
	}
	s := fold(util.CollapseSpaces(util.StripAccents(v)))
	upper := strings.ToUpper(s)
	if upper == clearToken {
		return ""
	}
	if canonical, ok := spellings[upper]; ok {
		return canonical
	}
	return s
}

// NormalizeText strips accents and squeezes whitespace, keeping the case.
func NormalizeText(v any) (string, bool) {
	s, ok := stringValue(v)
	if !ok {
		return "", false
	}
	return util.CollapseSpaces(util.StripAccents(s)), true
}

func NormalizeUpper(v any) (string, bool) {
	s, ok := NormalizeText(v)
	if !ok {
		return "", false
	}
	return strings.ToUpper(s), true
}

// NormalizeName is NormalizeUpper without the quotes and stray punctuation
// spreadsheets tend to leave around names.
func NormalizeName(v any) (string, bool) {
	s, ok := NormalizeUpper(v)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(strings.Trim(s, "\"'.,;:-")), true
}

// NormalizePhone drops separators and a leading 57 country code.
// Values containing letters are returned as typed so validation can reject them.
func NormalizePhone(v any) (string, bool) {
	s, ok := stringValue(v)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.IndexFunc(s, unicode.IsLetter) >= 0 {
		return s, true
	}
	digits := util.DigitsOnly(s)
	if len(digits) == 12 && strings.HasPrefix(digits, "57") {
		digits = digits[2:]
	}
	return digits, true
}

// NormalizeRegistroSIM reads the registration flag from booleans, 0/1 and the
// usual spreadsheet words. An empty value means Unknown. ok is false for nil
// and for values that are not recognized.
func NormalizeRegistroSIM(v any) (internal.RegistroSIM, bool) {
	switch t := v.(type) {
	case nil:
		return internal.RegistroUnknown, false
	case bool:
		if t {
			return internal.RegistroRegistered, true
		}
		return internal.RegistroNotRegistered, true
	case internal.RegistroSIM:
		return t, true
	}
	if f, ok := numberValue(v); ok {
		switch f {
		case 1:
			return internal.RegistroRegistered, true
		case 0:
			return internal.RegistroNotRegistered, true
		}
		return internal.RegistroUnknown, false
	}

	s, ok := NormalizeUpper(v)
	if !ok {
		return internal.RegistroUnknown, false
	}
	switch s {
	case "":
		return internal.RegistroUnknown, true
	case "SI", "S", "X", "TRUE", "VERDADERO", "1", "OK", "REGISTRADO", "REGISTRADA":
		return internal.RegistroRegistered, true
	case "NO", "N", "FALSE", "FALSO", "0", "NO REGISTRADO", "NO REGISTRADA":
		return internal.RegistroNotRegistered, true
	case "PENDIENTE", clearToken:
		return internal.RegistroUnknown, true
	}
	return internal.RegistroUnknown, false
}

// NormalizeAmount accepts numbers and money strings ("$ 1.500.000", "1,500.75").
func NormalizeAmount(v any) (float64, bool) {
	if f, ok := numberValue(v); ok {
		return f, true
	}
	s, ok := stringValue(v)
	if !ok {
		return 0, false
	}
	return util.ParseAmount(s)
}

func numberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// stringValue renders scalars the way a spreadsheet cell would show them.
func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case time.Time:
		return t.Format(dateLayout), true
	case fmt.Stringer:
		return t.String(), true
	}
	if f, ok := numberValue(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return fmt.Sprint(v), true
}
