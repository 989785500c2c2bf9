package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

// Builtin holds the catalog files shipped with the binary.
//
//go:embed games
var Builtin embed.FS

// Paths helper for default/campaign/variant files.
type Paths struct {
	BaseDir string // directory inside the loader's fs.FS, "." for the root
}

func (p Paths) DefaultPath() string {
	return path.Join(p.BaseDir, "games", "default.yaml")
}
func (p Paths) CampaignPath(campaign string) string {
	return path.Join(p.BaseDir, "games", campaign+".yaml")
}
func (p Paths) VariantPath(campaign, variant string) string {
	return path.Join(p.BaseDir, "games", campaign, "variants", variant+".yaml")
}

// Loader reads YAML configs and merges default → campaign → variant.
type Loader struct {
	fsys  fs.FS
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "campaign" or "campaign/variant"
}

// NewLoader creates a config loader over fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{
		fsys:  fsys,
		paths: Paths{BaseDir: "."},
		cache: make(map[string]RawConfig),
	}
}

// NewBuiltinLoader loads from the embedded catalog files.
func NewBuiltinLoader() *Loader {
	return NewLoader(Builtin)
}

// LoadMerged loads and merges default → campaign → variant (variant optional).
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(campaign, variant string) (RawConfig, error) {
	key := campaign
	if variant != "" {
		key = campaign + "/" + variant
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := l.readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if campaign != "" && campaign != "default" {
		campCfg, err := l.readYAML(l.paths.CampaignPath(campaign))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read campaign %q: %w", campaign, err)
		}
		merged = mergeRaw(merged, campCfg)
	}
	if variant != "" {
		if campaign == "" {
			campaign = "default"
		}
		varCfg, err := l.readYAML(l.paths.VariantPath(campaign, variant))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read variant %q: %w", variant, err)
		}
		merged = mergeRaw(merged, varCfg)
	}

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Load merges and normalizes in one step.
func (l *Loader) Load(campaign, variant string) (*Catalog, error) {
	raw, err := l.LoadMerged(campaign, variant)
	if err != nil {
		return nil, err
	}
	return Normalize(raw)
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func (l *Loader) readYAML(name string) (RawConfig, error) {
	var cfg RawConfig
	b, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// mergeRaw overlays b onto a. Scalars in b win when set. Prizes merge by id:
// fields set in b override, ids only in b are appended in b's order.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a
	out.Prizes = append([]RawPrize(nil), a.Prizes...)

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.StorageKey != "" {
		out.StorageKey = b.StorageKey
	}
	if b.DrawDelay != "" {
		out.DrawDelay = b.DrawDelay
	}
	if b.TriggerPolicy != "" {
		out.TriggerPolicy = b.TriggerPolicy
	}
	if b.Locale != "" {
		out.Locale = b.Locale
	}

	pos := make(map[string]int, len(out.Prizes))
	for i, p := range out.Prizes {
		pos[p.ID] = i
	}
	for _, bp := range b.Prizes {
		i, ok := pos[bp.ID]
		if !ok {
			pos[bp.ID] = len(out.Prizes)
			out.Prizes = append(out.Prizes, bp)
			continue
		}
		p := &out.Prizes[i]
		if bp.Name != "" {
			p.Name = bp.Name
		}
		if bp.Weight != nil {
			p.Weight = bp.Weight
		}
		if bp.Stock != nil {
			p.Stock = bp.Stock
		}
		if bp.HighTier != nil {
			p.HighTier = bp.HighTier
		}
	}
	return out
}
