// types.go
package catalog

import "time"

const (
	DefaultStorageKey = "prize_gacha_inventory_v1"
	DefaultDrawDelay  = 1500 * time.Millisecond
)

// Raw config loaded from YAML.
type RawConfig struct {
	Version       string     `yaml:"version"`
	StorageKey    string     `yaml:"storage_key,omitempty"`
	DrawDelay     string     `yaml:"draw_delay,omitempty"` // time.ParseDuration syntax, e.g. "1500ms"
	TriggerPolicy string     `yaml:"trigger_policy,omitempty"`
	Locale        string     `yaml:"locale,omitempty"`
	Prizes        []RawPrize `yaml:"prizes"`
	Notes         string     `yaml:"notes,omitempty"`
}

// RawPrize is one prize entry. Pointer fields distinguish "not set" from zero
// so that a variant file can override only what it names.
type RawPrize struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	Weight   *int   `yaml:"weight,omitempty"`
	Stock    *int   `yaml:"stock,omitempty"`
	HighTier *bool  `yaml:"high_tier,omitempty"`
}
