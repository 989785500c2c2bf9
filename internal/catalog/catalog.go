package catalog

import "time"

// Prize is one catalog entry. Weight is relative to the other eligible prizes.
type Prize struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Weight   int    `json:"weight"`
	HighTier bool   `json:"high_tier"`
}

// TriggerPolicy controls whether the draw trigger comes back after a result.
type TriggerPolicy string

const (
	PolicyReenable TriggerPolicy = "reenable"
	PolicyOneShot  TriggerPolicy = "one_shot"
)

// Catalog is the fixed, ordered prize list plus the baseline stock for a session.
// It is built once by Normalize and never mutated afterwards.
type Catalog struct {
	prizes   []Prize
	index    map[string]int
	baseline map[string]int

	Version       string
	StorageKey    string
	DrawDelay     time.Duration
	TriggerPolicy TriggerPolicy
	Locale        string
}

// New builds a catalog from prizes (in draw order) and their baseline stock.
func New(prizes []Prize, baseline map[string]int) *Catalog {
	c := &Catalog{
		prizes:        append([]Prize(nil), prizes...),
		index:         make(map[string]int, len(prizes)),
		baseline:      make(map[string]int, len(prizes)),
		StorageKey:    DefaultStorageKey,
		DrawDelay:     DefaultDrawDelay,
		TriggerPolicy: PolicyReenable,
	}
	for i, p := range c.prizes {
		c.index[p.ID] = i
		c.baseline[p.ID] = baseline[p.ID]
	}
	return c
}

// Prizes returns a copy of the ordered prize list.
func (c *Catalog) Prizes() []Prize {
	return append([]Prize(nil), c.prizes...)
}

func (c *Catalog) Len() int { return len(c.prizes) }

// Lookup finds a prize by id.
func (c *Catalog) Lookup(id string) (Prize, bool) {
	i, ok := c.index[id]
	if !ok {
		return Prize{}, false
	}
	return c.prizes[i], true
}

// Has reports whether id is a prize of this catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// IsHighTier reports whether id belongs to the statically designated top tier.
// Unknown ids are never high-tier.
func (c *Catalog) IsHighTier(id string) bool {
	i, ok := c.index[id]
	return ok && c.prizes[i].HighTier
}

// Baseline returns a fresh copy of the configured starting stock, keyed by prize id.
func (c *Catalog) Baseline() map[string]int {
	out := make(map[string]int, len(c.baseline))
	for k, v := range c.baseline {
		out[k] = v
	}
	return out
}
