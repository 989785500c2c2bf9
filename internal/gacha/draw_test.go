package gacha

import (
	"math"
	"testing"

	"github.com/xtding233/prize-gacha/internal/catalog"
	"github.com/xtding233/prize-gacha/internal/inventory"
)

func scenarioCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Prize{
		{ID: "ssr", Name: "SSR", Weight: 1, HighTier: true},
		{ID: "a", Name: "A", Weight: 4, HighTier: true},
		{ID: "b", Name: "B", Weight: 15},
		{ID: "c", Name: "C", Weight: 30},
		{ID: "d", Name: "D", Weight: 50},
	}, map[string]int{"ssr": 5, "a": 5, "b": 40, "c": 50, "d": 100})
}

func TestPickBoundaries(t *testing.T) {
	cat := scenarioCatalog()
	inv := inventory.Inventory(cat.Baseline())
	cases := []struct {
		r       float64 // fraction of totalWeight=100
		exclude bool
		want    string
	}{
		{0, false, "ssr"},
		{0.005, false, "ssr"},
		{0.02, false, "a"},
		{0.0499, false, "a"},
		{0.06, false, "b"},
		{0.25, false, "c"},
		{0.60, false, "d"},
		{0.9999, false, "d"},
		{0, true, "b"}, // eligible = b,c,d; total 95
		{20.0 / 95, true, "c"},
		{50.0 / 95, true, "d"},
	}
	for _, tc := range cases {
		p, ok := Pick(cat, inv, tc.exclude, FixedRNG(tc.r))
		if !ok || p.ID != tc.want {
			t.Fatalf("r=%v exclude=%v: got %q ok=%v, want %q", tc.r, tc.exclude, p.ID, ok, tc.want)
		}
	}
}

func TestPickSkipsOutOfStock(t *testing.T) {
	cat := scenarioCatalog()
	inv := inventory.Inventory{"ssr": 0, "a": 0, "b": 0, "c": 1, "d": 0}
	for _, r := range []float64{0, 0.5, 0.999} {
		p, ok := Pick(cat, inv, false, FixedRNG(r))
		if !ok || p.ID != "c" {
			t.Fatalf("r=%v: got %q ok=%v", r, p.ID, ok)
		}
	}
}

func TestPickNothingEligible(t *testing.T) {
	cat := scenarioCatalog()
	empty := inventory.Inventory{"ssr": 0, "a": 0, "b": 0, "c": 0, "d": 0}
	if _, ok := Pick(cat, empty, false, FixedRNG(0)); ok {
		t.Fatalf("empty stock must yield no prize")
	}
	onlyHigh := inventory.Inventory{"ssr": 3, "a": 1, "b": 0, "c": 0, "d": 0}
	if _, ok := Pick(cat, onlyHigh, true, FixedRNG(0)); ok {
		t.Fatalf("excluded high tier must yield no prize")
	}
	if p, ok := Pick(cat, onlyHigh, false, FixedRNG(0)); !ok || p.ID != "ssr" {
		t.Fatalf("without exclusion ssr is drawable, got %q", p.ID)
	}
}

func TestPickRoundingFallback(t *testing.T) {
	// r at the very top of the range must still land on the last eligible prize
	cat := scenarioCatalog()
	inv := inventory.Inventory(cat.Baseline())
	p, ok := Pick(cat, inv, false, FixedRNG(1))
	if !ok || p.ID != "d" {
		t.Fatalf("fallback should return last eligible, got %q ok=%v", p.ID, ok)
	}
}

func TestPickDoesNotMutate(t *testing.T) {
	cat := scenarioCatalog()
	inv := inventory.Inventory(cat.Baseline())
	before := inv.Clone()
	for i := 0; i < 100; i++ {
		Pick(cat, inv, i%2 == 0, NewSeededRNG(uint64(i)))
	}
	if !inv.Equal(before) {
		t.Fatalf("Pick mutated inventory: %v", inv)
	}
}

func TestPickStatApprox(t *testing.T) {
	const n = 200000
	cat := scenarioCatalog()
	inv := inventory.Inventory{"ssr": n, "a": n, "b": n, "c": n, "d": n}
	rng := NewSeededRNG(42)
	hits := map[string]int{}
	for i := 0; i < n; i++ {
		p, _ := Pick(cat, inv, false, rng)
		hits[p.ID]++
	}
	for _, p := range cat.Prizes() {
		freq := float64(hits[p.ID]) / n
		want := float64(p.Weight) / 100
		if math.Abs(freq-want) > 0.005 {
			t.Fatalf("%s: freq=%f not close to %f", p.ID, freq, want)
		}
	}
}

func TestExcludedNeverDrawn(t *testing.T) {
	cat := scenarioCatalog()
	inv := inventory.Inventory(cat.Baseline())
	rng := NewSeededRNG(7)
	for i := 0; i < 5000; i++ {
		p, ok := Pick(cat, inv, true, rng)
		if !ok || cat.IsHighTier(p.ID) {
			t.Fatalf("draw %d returned %q", i, p.ID)
		}
	}
}
