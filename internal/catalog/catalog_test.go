package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestBuiltinDefault(t *testing.T) {
	c, err := NewBuiltinLoader().Load("default", "")
	if err != nil {
		t.Fatal(err)
	}
	ids := []string{"ssr", "a", "b", "c", "d"}
	prizes := c.Prizes()
	if len(prizes) != len(ids) {
		t.Fatalf("got %d prizes, want %d", len(prizes), len(ids))
	}
	for i, id := range ids {
		if prizes[i].ID != id {
			t.Fatalf("prizes[%d]=%q want %q", i, prizes[i].ID, id)
		}
	}
	if !c.IsHighTier("ssr") || !c.IsHighTier("a") {
		t.Fatalf("ssr and a must be high-tier")
	}
	if c.IsHighTier("b") || c.IsHighTier("nope") {
		t.Fatalf("b and unknown ids must not be high-tier")
	}
	if got := c.Baseline()["c"]; got != 200 {
		t.Fatalf("baseline c=%d want 200", got)
	}
	if c.DrawDelay != 1500*time.Millisecond {
		t.Fatalf("draw delay %v", c.DrawDelay)
	}
	if c.TriggerPolicy != PolicyReenable {
		t.Fatalf("policy %q", c.TriggerPolicy)
	}
}

func TestBuiltinVariantOverlay(t *testing.T) {
	c, err := NewBuiltinLoader().Load("default", "booth")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][2]int{ // weight, stock
		"ssr": {1, 5}, "a": {4, 5}, "b": {15, 40}, "c": {30, 50}, "d": {50, 100},
	}
	base := c.Baseline()
	for id, ws := range want {
		p, ok := c.Lookup(id)
		if !ok {
			t.Fatalf("missing %q", id)
		}
		if p.Weight != ws[0] || base[id] != ws[1] {
			t.Fatalf("%s: weight=%d stock=%d want %v", id, p.Weight, base[id], ws)
		}
	}
	if c.TriggerPolicy != PolicyOneShot {
		t.Fatalf("variant should switch to one_shot, got %q", c.TriggerPolicy)
	}
	// names survive from default
	if p, _ := c.Lookup("d"); p.Name != "ボールペン" {
		t.Fatalf("name lost in merge: %q", p.Name)
	}
}

func TestMergeAppendsNewPrize(t *testing.T) {
	fsys := fstest.MapFS{
		"games/default.yaml": {Data: []byte("prizes:\n  - {id: x, weight: 2, stock: 1}\n")},
		"games/summer.yaml":  {Data: []byte("storage_key: summer\nprizes:\n  - {id: y, weight: 3, stock: 4, high_tier: true}\n")},
	}
	c, err := NewLoader(fsys).Load("summer", "")
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 || c.Prizes()[1].ID != "y" || !c.IsHighTier("y") {
		t.Fatalf("unexpected prizes %+v", c.Prizes())
	}
	if c.StorageKey != "summer" {
		t.Fatalf("storage key %q", c.StorageKey)
	}
}

func TestLoaderCacheInvalidate(t *testing.T) {
	fsys := fstest.MapFS{
		"games/default.yaml": {Data: []byte("prizes:\n  - {id: x, weight: 2, stock: 1}\n")},
	}
	l := NewLoader(fsys)
	if _, err := l.Load("", ""); err != nil {
		t.Fatal(err)
	}
	fsys["games/default.yaml"] = &fstest.MapFile{Data: []byte("prizes:\n  - {id: x, weight: 9, stock: 1}\n")}
	c, _ := l.Load("", "")
	if p, _ := c.Lookup("x"); p.Weight != 2 {
		t.Fatalf("expected cached weight 2, got %d", p.Weight)
	}
	l.Invalidate()
	c, _ = l.Load("", "")
	if p, _ := c.Lookup("x"); p.Weight != 9 {
		t.Fatalf("expected reloaded weight 9, got %d", p.Weight)
	}
}

func TestValidateRaw(t *testing.T) {
	zero, neg := 0, -1
	cases := []struct {
		name string
		cfg  RawConfig
		want string
	}{
		{"empty", RawConfig{}, "prizes must not be empty"},
		{"no id", RawConfig{Prizes: []RawPrize{{Weight: new(int)}}}, "id is required"},
		{"zero weight", RawConfig{Prizes: []RawPrize{{ID: "a", Weight: &zero}}}, "weight must be > 0"},
		{"missing weight", RawConfig{Prizes: []RawPrize{{ID: "a"}}}, "weight is required"},
		{"negative stock", RawConfig{Prizes: []RawPrize{{ID: "a", Weight: intp(1), Stock: &neg}}}, "stock must be >= 0"},
		{"missing stock", RawConfig{Prizes: []RawPrize{{ID: "a", Weight: intp(1)}}}, "stock is required"},
		{"dup", RawConfig{Prizes: []RawPrize{{ID: "a", Weight: intp(1), Stock: &zero}, {ID: "a", Weight: intp(1), Stock: &zero}}}, "duplicated"},
		{"delay", RawConfig{DrawDelay: "soon", Prizes: []RawPrize{{ID: "a", Weight: intp(1), Stock: &zero}}}, "draw_delay"},
		{"policy", RawConfig{TriggerPolicy: "twice", Prizes: []RawPrize{{ID: "a", Weight: intp(1), Stock: &zero}}}, "trigger_policy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRaw(tc.cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want error containing %q", err, tc.want)
			}
		})
	}
	if err := ValidateRaw(RawConfig{Prizes: []RawPrize{{ID: "a", Weight: intp(1), Stock: &zero}}}); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestStockMustBeExplicit(t *testing.T) {
	if _, err := Normalize(RawConfig{Prizes: []RawPrize{{ID: "a", Weight: intp(1)}}}); err == nil {
		t.Fatal("a prize without stock must be rejected")
	}
	// a variant may still rely on stock set by an earlier layer
	fsys := fstest.MapFS{
		"games/default.yaml":                {Data: []byte("prizes:\n  - {id: a, weight: 1, stock: 3}\n")},
		"games/default/variants/light.yaml": {Data: []byte("prizes:\n  - {id: a, weight: 5}\n  - {id: b, weight: 1}\n")},
	}
	if _, err := NewLoader(fsys).Load("default", "light"); err == nil || !strings.Contains(err.Error(), "prizes[1].stock is required") {
		t.Fatalf("new prize without stock accepted: %v", err)
	}
	fsys["games/default/variants/light.yaml"] = &fstest.MapFile{Data: []byte("prizes:\n  - {id: a, weight: 5}\n")}
	c, err := NewLoader(fsys).Load("default", "light")
	if err != nil {
		t.Fatal(err)
	}
	if c.Baseline()["a"] != 3 {
		t.Fatalf("inherited stock lost: %v", c.Baseline())
	}
	if p, _ := c.Lookup("a"); p.Name != "a" || p.Weight != 5 {
		t.Fatalf("name should default to id and weight be overridden, got %+v", p)
	}
}

func TestFileWatcherScan(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "default.yaml")
	if err := os.WriteFile(file, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var hits []string
	w := NewFileWatcher(dir, time.Hour, func(p string) { hits = append(hits, p) })
	w.Scan(true)
	if len(hits) != 0 {
		t.Fatalf("prime scan must not report, got %v", hits)
	}

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(file, later, later); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed := w.Scan(false)
	if len(changed) != 1 || changed[0] != file || len(hits) != 1 {
		t.Fatalf("expected only %s, got %v", file, changed)
	}
	if changed := w.Scan(false); len(changed) != 0 {
		t.Fatalf("no change expected, got %v", changed)
	}
	w.Stop()
	w.Stop()
}

func intp(v int) *int { return &v }
