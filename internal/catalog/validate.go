package catalog

import (
	"fmt"
	"strings"
	"time"
)

// ValidateRaw checks semantic constraints of a merged RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if len(cfg.Prizes) == 0 {
		errs = append(errs, "prizes must not be empty")
	}
	seen := make(map[string]bool, len(cfg.Prizes))
	for i, p := range cfg.Prizes {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("prizes[%d].id is required", i))
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Sprintf("prizes[%d].id %q is duplicated", i, p.ID))
		}
		seen[p.ID] = true
		if p.Weight == nil {
			errs = append(errs, fmt.Sprintf("prizes[%d].weight is required", i))
		} else if *p.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("prizes[%d].weight must be > 0", i))
		}
		if p.Stock == nil {
			errs = append(errs, fmt.Sprintf("prizes[%d].stock is required", i))
		} else if *p.Stock < 0 {
			errs = append(errs, fmt.Sprintf("prizes[%d].stock must be >= 0", i))
		}
	}

	if cfg.DrawDelay != "" {
		if d, err := time.ParseDuration(cfg.DrawDelay); err != nil {
			errs = append(errs, "draw_delay: "+err.Error())
		} else if d < 0 {
			errs = append(errs, "draw_delay must be >= 0")
		}
	}

	switch TriggerPolicy(cfg.TriggerPolicy) {
	case "", PolicyReenable, PolicyOneShot:
	default:
		errs = append(errs, "trigger_policy must be one of: reenable, one_shot")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Normalize validates cfg and turns it into a Catalog.
func Normalize(cfg RawConfig) (*Catalog, error) {
	if err := ValidateRaw(cfg); err != nil {
		return nil, err
	}
	prizes := make([]Prize, 0, len(cfg.Prizes))
	baseline := make(map[string]int, len(cfg.Prizes))
	for _, p := range cfg.Prizes {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		prizes = append(prizes, Prize{
			ID:       p.ID,
			Name:     name,
			Weight:   *p.Weight,
			HighTier: p.HighTier != nil && *p.HighTier,
		})
		baseline[p.ID] = *p.Stock
	}

	c := New(prizes, baseline)
	c.Version = cfg.Version
	c.Locale = cfg.Locale
	if cfg.StorageKey != "" {
		c.StorageKey = cfg.StorageKey
	}
	if cfg.DrawDelay != "" {
		c.DrawDelay, _ = time.ParseDuration(cfg.DrawDelay)
	}
	if cfg.TriggerPolicy != "" {
		c.TriggerPolicy = TriggerPolicy(cfg.TriggerPolicy)
	}
	return c, nil
}
