package gacha

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/xtding233/prize-gacha/internal/catalog"
	"github.com/xtding233/prize-gacha/internal/inventory"
)

var ErrNothingEligible = errors.New("no eligible prize to simulate")

// Stats summarizes simulation results.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// PrizeFrequency compares the observed share of one prize with its weight share.
type PrizeFrequency struct {
	ID       string
	Name     string
	Count    int
	Observed float64
	Expected float64
}

// FrequencyReport is the outcome of SimulateFrequencies.
type FrequencyReport struct {
	Draws  int
	Prizes []PrizeFrequency
	ChiSq  float64 // Pearson statistic over the eligible prizes
	PValue float64 // P(X >= ChiSq) under the weight distribution
}

// SimulateFrequencies draws n times from a stock that never runs out and
// reports how the observed frequencies compare to weight/totalWeight.
func SimulateFrequencies(cat *catalog.Catalog, n int, excludeHighTier bool, rng RandomSource) (FrequencyReport, error) {
	if err := validateWeights(cat.Prizes()); err != nil {
		return FrequencyReport{}, err
	}
	unlimited := make(inventory.Inventory, cat.Len())
	for _, p := range cat.Prizes() {
		unlimited[p.ID] = math.MaxInt32
	}
	eligible := Eligible(cat, unlimited, excludeHighTier)
	if len(eligible) == 0 {
		return FrequencyReport{}, ErrNothingEligible
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	counts := make(map[string]int, len(eligible))
	for i := 0; i < n; i++ {
		counts[pickWeighted(eligible, rng).ID]++
	}

	total := 0
	for _, p := range eligible {
		total += p.Weight
	}
	rep := FrequencyReport{Draws: n}
	for _, p := range eligible {
		exp := float64(p.Weight) / float64(total)
		pf := PrizeFrequency{ID: p.ID, Name: p.Name, Count: counts[p.ID], Expected: exp}
		if n > 0 {
			pf.Observed = float64(pf.Count) / float64(n)
			e := exp * float64(n)
			d := float64(pf.Count) - e
			rep.ChiSq += d * d / e
		}
		rep.Prizes = append(rep.Prizes, pf)
	}
	rep.PValue = 1
	if df := len(eligible) - 1; df > 0 && n > 0 {
		rep.PValue = distuv.ChiSquared{K: float64(df)}.Survival(rep.ChiSq)
	}
	return rep, nil
}

// DepletionReport summarizes, per prize, at which draw its stock ran out when
// a full baseline is drained with no exclusion.
type DepletionReport struct {
	Trials    int
	TotalDraw int
	SoldOutAt map[string]Stats
}

// RunDepletion repeats trials of draining the catalog's baseline stock.
// progress, if set, is called after every trial.
func RunDepletion(cat *catalog.Catalog, trials int, rng RandomSource, progress func()) (DepletionReport, error) {
	if err := validateWeights(cat.Prizes()); err != nil {
		return DepletionReport{}, err
	}
	if trials <= 0 {
		return DepletionReport{}, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	baseline := inventory.Inventory(cat.Baseline())
	samples := make(map[string][]int, cat.Len())
	for i := 0; i < trials; i++ {
		inv := baseline.Clone()
		soldOut := make(map[string]int, cat.Len())
		draws := 0
		for {
			p, ok := Pick(cat, inv, false, rng)
			if !ok {
				break
			}
			draws++
			inv[p.ID]--
			if inv[p.ID] == 0 {
				soldOut[p.ID] = draws
			}
		}
		for _, p := range cat.Prizes() {
			samples[p.ID] = append(samples[p.ID], soldOut[p.ID])
		}
		if progress != nil {
			progress()
		}
	}

	rep := DepletionReport{
		Trials:    trials,
		TotalDraw: baseline.Total(),
		SoldOutAt: make(map[string]Stats, len(samples)),
	}
	for id, xs := range samples {
		rep.SoldOutAt[id] = calcStats(xs)
	}
	return rep, nil
}
