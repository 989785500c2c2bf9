package gacha

import (
	"github.com/xtding233/prize-gacha/internal/catalog"
	"github.com/xtding233/prize-gacha/internal/inventory"
)

// Eligible returns, in catalog order, the prizes that still have stock and are
// not filtered out by the high-tier exclusion.
func Eligible(cat *catalog.Catalog, inv inventory.Inventory, excludeHighTier bool) []catalog.Prize {
	var out []catalog.Prize
	for _, p := range cat.Prizes() {
		if inv[p.ID] <= 0 {
			continue
		}
		if excludeHighTier && cat.IsHighTier(p.ID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Pick draws one eligible prize with probability weight/totalWeight.
// ok is false only when nothing is eligible. Pick does not touch inv.
//
// r is drawn from [0, totalWeight) and the eligible list is walked in catalog
// order subtracting weights; the first prize whose weight exceeds what is left
// of r wins. If rounding leaves r unconsumed the last eligible prize is returned.
func Pick(cat *catalog.Catalog, inv inventory.Inventory, excludeHighTier bool, rng RandomSource) (catalog.Prize, bool) {
	eligible := Eligible(cat, inv, excludeHighTier)
	if len(eligible) == 0 {
		return catalog.Prize{}, false
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return pickWeighted(eligible, rng), true
}

func pickWeighted(eligible []catalog.Prize, rng RandomSource) catalog.Prize {
	total := 0
	for _, p := range eligible {
		total += p.Weight
	}
	r := rng.Float64() * float64(total)
	for _, p := range eligible {
		w := float64(p.Weight)
		if r < w {
			return p
		}
		r -= w
	}
	return eligible[len(eligible)-1]
}
