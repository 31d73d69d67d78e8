package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces     = regexp.MustCompile(`\s+`)
	reKeySep     = regexp.MustCompile(`[\s_]+`)
	reKeyJunk    = regexp.MustCompile(`[^A-Z0-9_]`)
	reDigitsRuns = regexp.MustCompile(`\d+`)
)

// StripAccents decomposes s and drops combining marks, so "Línea" becomes "Linea"
// and "Ñ" becomes "N".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CollapseSpaces trims s and squeezes inner whitespace runs into one space.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// CanonicalKey folds a spreadsheet header into a comparable key:
// accents stripped, upper case, whitespace and underscore runs joined by "_",
// anything else dropped. "Registro  sim" and "REGISTRO_SIM" both give "REGISTRO_SIM".
func CanonicalKey(header string) string {
	s := strings.ToUpper(StripAccents(strings.TrimSpace(header)))
	s = strings.Trim(s, "\"'")
	s = reKeySep.ReplaceAllString(s, "_")
	s = reKeyJunk.ReplaceAllString(s, "")
	return strings.Trim(s, "_")
}

// DigitsOnly keeps the ASCII digits of s.
func DigitsOnly(s string) string {
	out := strings.Builder{}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// DigitRuns returns every maximal run of digits in s, in order.
func DigitRuns(s string) []string {
	return reDigitsRuns.FindAllString(s, -1)
}

func Tokenize(input string) []string {
	norm := CollapseSpaces(strings.ToUpper(StripAccents(input)))
	parts := strings.Split(norm, " ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len([]rune(p)) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

func DiceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	pairs := func(s string) []string {
		r := []rune(s)
		if len(r) < 2 {
			return nil
		}
		out := make([]string, 0, len(r)-1)
		for i := 0; i < len(r)-1; i++ {
			out = append(out, string(r[i:i+2]))
		}
		return out
	}

	aPairs := pairs(a)
	bPairs := pairs(b)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	bCount := map[string]int{}
	for _, p := range bPairs {
		bCount[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if bCount[p] > 0 {
			inter++
			bCount[p]--
		}
	}

	return float64(2*inter) / float64(len(aPairs)+len(bPairs))
}
