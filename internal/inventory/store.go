package inventory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	json "github.com/goccy/go-json"

	"github.com/xtding233/prize-gacha/internal/catalog"
)

// ErrCorruptState marks persisted data that could not be used as-is.
var ErrCorruptState = errors.New("corrupt persisted inventory")

// Store loads and saves the inventory blob under the catalog's storage key.
// It never hands out a map it keeps a reference to.
type Store struct {
	kv  Storage
	key string
	cat *catalog.Catalog
	log *slog.Logger
}

// NewStore binds a Storage to a catalog. A nil logger discards.
func NewStore(kv Storage, cat *catalog.Catalog, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{kv: kv, key: cat.StorageKey, cat: cat, log: log}
}

func (s *Store) Key() string { return s.key }

// Baseline returns a fresh copy of the catalog's starting stock.
func (s *Store) Baseline() Inventory {
	return Inventory(s.cat.Baseline())
}

// Load reads the persisted inventory and merges it over the baseline.
// Absent data yields the baseline silently; unreadable or corrupt data yields
// the baseline and a warning. Load never fails.
func (s *Store) Load() Inventory {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.log.Warn("inventory read failed, using baseline", slog.String("key", s.key), slog.Any("err", err))
		return s.Baseline()
	}
	if !ok || len(raw) == 0 {
		return s.Baseline()
	}
	inv, err := Merge(s.Baseline(), s.cat, raw)
	if err != nil {
		s.log.Warn("inventory data corrupt, resetting to baseline", slog.String("key", s.key), slog.Any("err", err))
		return s.Baseline()
	}
	return inv
}

// Save overwrites the stored value with inv.
func (s *Store) Save(inv Inventory) error {
	b, err := json.Marshal(map[string]int(inv))
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	if err := s.kv.Set(s.key, b); err != nil {
		return fmt.Errorf("write inventory %q: %w", s.key, err)
	}
	return nil
}

// Reset persists and returns a fresh copy of the baseline. The returned
// inventory is valid even when the write fails.
func (s *Store) Reset() (Inventory, error) {
	inv := s.Baseline()
	return inv, s.Save(inv)
}

// Merge overlays raw (a JSON object of id → count) onto baseline.
// Only ids known to cat are taken; unknown keys are dropped, and values that
// are not non-negative integers keep the baseline value. A blob that is not a
// JSON object is rejected with ErrCorruptState.
func Merge(baseline Inventory, cat *catalog.Catalog, raw []byte) (Inventory, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", ErrCorruptState)
	}
	out := baseline.Clone()
	for _, p := range cat.Prizes() {
		v, ok := fields[p.ID]
		if !ok {
			continue
		}
		if string(bytes.TrimSpace(v)) == "null" {
			continue
		}
		var n int
		if err := json.Unmarshal(v, &n); err != nil || n < 0 {
			continue
		}
		out[p.ID] = n
	}
	return out, nil
}
