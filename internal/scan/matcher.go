// Package scan matches numbers read from scanned labels, OCR output or PDF text
// against the records of a month.
package scan

import (
	"regexp"
	"sort"
	"strings"

	"simventas/internal"
	"simventas/internal/config"
	"simventas/internal/sales"
	"simventas/internal/util"
)

var reDigitGap = regexp.MustCompile(`(\d)[ \-.]+(\d)`)

type Matcher struct {
	cfg   config.Config
	index *Index
}

func NewMatcher(cfg config.Config, recs []internal.SaleRecord) *Matcher {
	return &Matcher{cfg: cfg, index: BuildIndex(recs)}
}

// Tokens pulls NUMERO and ICCID candidates out of free text. Digit groups split
// by spaces or dashes are also tried joined, since labels print ICCIDs in blocks.
func Tokens(text string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(run string) {
		if seen[run] || !(isICCIDLike(run) || sales.ValidNumero(run)) {
			return
		}
		seen[run] = true
		out = append(out, run)
	}
	for _, line := range strings.Split(text, "\n") {
		for _, run := range util.DigitRuns(line) {
			add(run)
		}
		joined := line
		for reDigitGap.MatchString(joined) {
			joined = reDigitGap.ReplaceAllString(joined, "$1$2")
		}
		for _, run := range util.DigitRuns(joined) {
			add(run)
		}
	}
	return out
}

func isICCIDLike(s string) bool {
	return len(s) >= 18 && len(s) <= 22
}

// MatchText matches every token of text. When several tokens land on the same
// record only the most confident verdict is kept.
func (m *Matcher) MatchText(text string) []internal.ScanMatch {
	var out []internal.ScanMatch
	byNumero := map[string]int{}
	for _, tok := range Tokens(text) {
		res := m.Match(tok)
		if res.Numero == "" {
			out = append(out, res)
			continue
		}
		if i, ok := byNumero[res.Numero]; ok {
			if res.Confidence > out[i].Confidence {
				out[i] = res
			}
			continue
		}
		byNumero[res.Numero] = len(out)
		out = append(out, res)
	}
	return out
}

func (m *Matcher) Match(token string) internal.ScanMatch {
	if sales.ValidNumero(token) {
		if rec, ok := m.index.ByNumero[token]; ok {
			return verdict(token, internal.MatchOK, 0.99, internal.ReasonNumero, &rec, candidatesOf([]internal.SaleRecord{rec}, 0.99))
		}
		return verdict(token, internal.MatchNotFound, 0, internal.ReasonNone, nil, []internal.ScanCandidate{})
	}

	exact := m.index.ByICCID[token]
	if len(exact) == 1 {
		return verdict(token, internal.MatchOK, 0.99, internal.ReasonICCID, &exact[0], candidatesOf(exact, 0.99))
	}
	if len(exact) > 1 {
		return verdict(token, internal.MatchReview, 0.80, internal.ReasonICCID, nil, candidatesOf(exact, 0.80))
	}

	if prefixed := m.index.WithPrefix(token); len(prefixed) == 1 {
		recs := m.index.ByICCID[prefixed[0]]
		if len(recs) == 1 {
			return verdict(token, internal.MatchReview, 0.90, internal.ReasonPrefix, &recs[0], candidatesOf(recs, 0.90))
		}
	}

	candidates := m.rank(token)
	if len(candidates) == 0 {
		return verdict(token, internal.MatchNotFound, 0, internal.ReasonNone, nil, []internal.ScanCandidate{})
	}
	top := candidates[0]
	rec := m.index.ByNumero[top.Numero]
	// A near tie with the runner-up is never auto-confirmed.
	gap := top.Score
	if len(candidates) > 1 {
		gap = top.Score - candidates[1].Score
	}
	switch {
	case top.Score >= m.cfg.ScanOKThreshold && gap >= m.cfg.ScanGapThreshold:
		return verdict(token, internal.MatchOK, top.Score, internal.ReasonFuzzy, &rec, candidates)
	case top.Score >= m.cfg.ScanReviewThreshold:
		return verdict(token, internal.MatchReview, top.Score, internal.ReasonFuzzy, &rec, candidates)
	}
	return verdict(token, internal.MatchNotFound, top.Score, internal.ReasonNone, nil, candidates)
}

func (m *Matcher) rank(token string) []internal.ScanCandidate {
	var out []internal.ScanCandidate
	for _, iccid := range m.index.ICCIDs() {
		score := util.DiceCoefficient(token, iccid)
		if score == 0 {
			continue
		}
		for _, rec := range m.index.ByICCID[iccid] {
			out = append(out, internal.ScanCandidate{Numero: rec.Numero, ICCID: rec.ICCID, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func verdict(token string, status internal.MatchStatus, conf float64, reason internal.MatchReason, rec *internal.SaleRecord, cands []internal.ScanCandidate) internal.ScanMatch {
	res := internal.ScanMatch{Token: token, Status: status, Confidence: conf, Reason: reason, Candidates: cands}
	if rec != nil {
		res.Numero = rec.Numero
		res.ICCID = rec.ICCID
	}
	return res
}

func candidatesOf(recs []internal.SaleRecord, score float64) []internal.ScanCandidate {
	limit := len(recs)
	if limit > 5 {
		limit = 5
	}
	out := make([]internal.ScanCandidate, 0, limit)
	for _, r := range recs[:limit] {
		out = append(out, internal.ScanCandidate{Numero: r.Numero, ICCID: r.ICCID, Score: score})
	}
	return out
}
