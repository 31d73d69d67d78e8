package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reThousandsDot   = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})+$`)
	reThousandsComma = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+$`)
	reMixedDotComma  = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})*,\d+$`)
	reMixedCommaDot  = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})*\.\d+$`)
	reAmountJunk     = regexp.MustCompile(`[^0-9.,\-]`)
)

// ParseAmount reads a money-like cell ("$ 45.000", "1.234,50", "1,234.50", "12000")
// into a float. Dots and commas are told apart by their grouping shape, the
// local convention being "." for thousands.
func ParseAmount(input string) (float64, bool) {
	compact := strings.ReplaceAll(input, " ", "")
	compact = reAmountJunk.ReplaceAllString(compact, "")
	if compact == "" || compact == "-" {
		return 0, false
	}

	switch {
	case reThousandsDot.MatchString(compact):
		compact = strings.ReplaceAll(compact, ".", "")
	case reThousandsComma.MatchString(compact):
		compact = strings.ReplaceAll(compact, ",", "")
	case reMixedDotComma.MatchString(compact):
		compact = strings.ReplaceAll(compact, ".", "")
		compact = strings.ReplaceAll(compact, ",", ".")
	case reMixedCommaDot.MatchString(compact):
		compact = strings.ReplaceAll(compact, ",", "")
	case strings.Contains(compact, ",") && !strings.Contains(compact, "."):
		compact = strings.ReplaceAll(compact, ",", ".")
	}

	parsed, err := strconv.ParseFloat(compact, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
