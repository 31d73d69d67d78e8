package sales

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"simventas/internal/store"
	"simventas/internal/util"
)

const monthsRoot = "months"

var monthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

var reMonthText = regexp.MustCompile(`(?i)\b(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)\b[\s_/\-de]*(\d{4})`)

// MonthKey names the month collection t belongs to, e.g. "Septiembre_2025".
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%s_%d", monthNames[t.Month()-1], t.Year())
}

// ValidMonth accepts any name usable as a single store path segment.
func ValidMonth(month string) error {
	if err := store.ValidKey(month); err != nil || strings.Contains(month, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return nil
}

// MonthFromText finds "septiembre 2025" style mentions, as in mail subjects.
func MonthFromText(s string) (string, bool) {
	m := reMonthText.FindStringSubmatch(util.StripAccents(s))
	if m == nil {
		return "", false
	}
	name := strings.ToLower(m[1])
	if name == "setiembre" {
		name = "septiembre"
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return "", false
	}
	for i, n := range monthNames {
		if strings.ToLower(n) == name {
			return MonthKey(time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)), true
		}
	}
	return "", false
}

func SalesPath(month string) string {
	return store.Join(monthsRoot, month, "sales")
}

func SalePath(month, numero string) string {
	return store.Join(monthsRoot, month, "sales", numero)
}
