package scan

import (
	"sort"
	"strings"

	"simventas/internal"
	"simventas/internal/util"
)

type Index struct {
	ByNumero map[string]internal.SaleRecord
	ByICCID  map[string][]internal.SaleRecord
	// iccids holds every indexed ICCID in sorted order for prefix and fuzzy lookups.
	iccids []string
}

func BuildIndex(recs []internal.SaleRecord) *Index {
	idx := &Index{
		ByNumero: map[string]internal.SaleRecord{},
		ByICCID:  map[string][]internal.SaleRecord{},
	}
	for _, r := range recs {
		if r.Numero != "" {
			idx.ByNumero[r.Numero] = r
		}
		iccid := util.DigitsOnly(r.ICCID)
		if iccid == "" {
			continue
		}
		if _, ok := idx.ByICCID[iccid]; !ok {
			idx.iccids = append(idx.iccids, iccid)
		}
		idx.ByICCID[iccid] = append(idx.ByICCID[iccid], r)
	}
	sort.Strings(idx.iccids)
	return idx
}

// WithPrefix returns indexed ICCIDs that extend or are extended by token by
// exactly one digit, the usual shape of a missing or extra check digit.
func (idx *Index) WithPrefix(token string) []string {
	var out []string
	if len(token) > 1 {
		short := token[:len(token)-1]
		if _, ok := idx.ByICCID[short]; ok {
			out = append(out, short)
		}
	}
	i := sort.SearchStrings(idx.iccids, token)
	for ; i < len(idx.iccids) && strings.HasPrefix(idx.iccids[i], token); i++ {
		if len(idx.iccids[i]) == len(token)+1 {
			out = append(out, idx.iccids[i])
		}
	}
	return out
}

func (idx *Index) ICCIDs() []string {
	return idx.iccids
}
