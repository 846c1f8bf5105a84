package s1_preprocess

import (
	"github.com/wonny/aegis/momentum/internal/contracts"
)

// FilterPriceRange drops records priced outside [floor, ceiling].
// It returns the kept records and the month indices that were removed.
func FilterPriceRange(series []contracts.MonthlyRecord, floor, ceiling float64) ([]contracts.MonthlyRecord, map[int]bool) {
	kept := make([]contracts.MonthlyRecord, 0, len(series))
	removed := make(map[int]bool)
	for _, rec := range series {
		if rec.Price < floor || rec.Price > ceiling {
			removed[contracts.MonthIndex(rec.Date)] = true
			continue
		}
		kept = append(kept, rec)
	}
	return kept, removed
}
