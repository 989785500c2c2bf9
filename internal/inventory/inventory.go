package inventory

import (
	"slices"

	"github.com/xtding233/prize-gacha/internal/catalog"
)

// Inventory maps prize id → remaining count.
type Inventory map[string]int

// Clone returns an independent copy.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}

// Total sums every remaining count.
func (inv Inventory) Total() int {
	n := 0
	for _, v := range inv {
		n += v
	}
	return n
}

// Remaining returns the count for id; unknown ids have none.
func (inv Inventory) Remaining(id string) int {
	return inv[id]
}

// AnyInStock reports whether some catalog prize still has stock.
func (inv Inventory) AnyInStock(cat *catalog.Catalog) bool {
	for _, p := range cat.Prizes() {
		if inv[p.ID] > 0 {
			return true
		}
	}
	return false
}

// Equal compares two inventories key by key.
func (inv Inventory) Equal(other Inventory) bool {
	if len(inv) != len(other) {
		return false
	}
	for k, v := range inv {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Keys returns the ids in sorted order.
func (inv Inventory) Keys() []string {
	keys := make([]string, 0, len(inv))
	for k := range inv {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
