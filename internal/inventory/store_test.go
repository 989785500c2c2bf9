package inventory

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xtding233/prize-gacha/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	prizes := []catalog.Prize{
		{ID: "ssr", Name: "SSR", Weight: 1, HighTier: true},
		{ID: "a", Name: "A", Weight: 4, HighTier: true},
		{ID: "b", Name: "B", Weight: 15},
		{ID: "c", Name: "C", Weight: 30},
		{ID: "d", Name: "D", Weight: 50},
	}
	return catalog.New(prizes, map[string]int{"ssr": 5, "a": 5, "b": 40, "c": 50, "d": 100})
}

func TestLoadAbsentReturnsBaseline(t *testing.T) {
	cat := testCatalog()
	s := NewStore(NewMemoryStorage(), cat, nil)
	inv := s.Load()
	if !inv.Equal(Inventory(cat.Baseline())) {
		t.Fatalf("got %v", inv)
	}
	// deep copy: mutating the result must not leak into the next load
	inv["ssr"] = 0
	if s.Load()["ssr"] != 5 {
		t.Fatalf("baseline was aliased")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cat := testCatalog()
	s := NewStore(NewMemoryStorage(), cat, nil)
	x := Inventory{"ssr": 0, "a": 3, "b": 7, "c": 0, "d": 99}
	if err := s.Save(x); err != nil {
		t.Fatal(err)
	}
	if got := s.Load(); !got.Equal(x) {
		t.Fatalf("load(save(x)) = %v, want %v", got, x)
	}
}

func TestLoadCorruptLogsAndFallsBack(t *testing.T) {
	cat := testCatalog()
	for _, raw := range []string{"{not json", "[1,2,3]", "null", `"text"`} {
		kv := NewMemoryStorage()
		_ = kv.Set(cat.StorageKey, []byte(raw))
		var buf bytes.Buffer
		s := NewStore(kv, cat, slog.New(slog.NewTextHandler(&buf, nil)))
		if got := s.Load(); !got.Equal(Inventory(cat.Baseline())) {
			t.Fatalf("%q: got %v", raw, got)
		}
		if !strings.Contains(buf.String(), "corrupt") {
			t.Fatalf("%q: expected a corruption log line, got %q", raw, buf.String())
		}
	}
}

func TestMergeDropsUnknownAndKeepsMissing(t *testing.T) {
	cat := testCatalog()
	raw := []byte(`{"ssr": 1, "legacy": 42, "b": -3, "c": 1.5, "d": null}`)
	inv, err := Merge(Inventory(cat.Baseline()), cat, raw)
	if err != nil {
		t.Fatal(err)
	}
	want := Inventory{"ssr": 1, "a": 5, "b": 40, "c": 50, "d": 100}
	if !inv.Equal(want) {
		t.Fatalf("got %v want %v", inv, want)
	}
	if _, ok := inv["legacy"]; ok {
		t.Fatalf("unknown key leaked")
	}
}

func TestMergeRejectsNonObject(t *testing.T) {
	cat := testCatalog()
	if _, err := Merge(Inventory(cat.Baseline()), cat, []byte("42")); !errors.Is(err, ErrCorruptState) {
		t.Fatalf("want ErrCorruptState, got %v", err)
	}
}

func TestReset(t *testing.T) {
	cat := testCatalog()
	kv := NewMemoryStorage()
	s := NewStore(kv, cat, nil)
	_ = s.Save(Inventory{"ssr": 0, "a": 0, "b": 0, "c": 0, "d": 0})
	inv, err := s.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if !inv.Equal(Inventory(cat.Baseline())) || !s.Load().Equal(inv) {
		t.Fatalf("reset not persisted: %v", s.Load())
	}
}

type failingStorage struct{}

func (failingStorage) Get(string) ([]byte, bool, error) { return nil, false, errors.New("disk gone") }
func (failingStorage) Set(string, []byte) error         { return errors.New("disk gone") }

func TestStorageFailures(t *testing.T) {
	cat := testCatalog()
	s := NewStore(failingStorage{}, cat, nil)
	if got := s.Load(); !got.Equal(Inventory(cat.Baseline())) {
		t.Fatalf("read failure should fall back to baseline, got %v", got)
	}
	inv, err := s.Reset()
	if err == nil {
		t.Fatalf("expected write error")
	}
	if !inv.Equal(Inventory(cat.Baseline())) {
		t.Fatalf("reset must still return baseline")
	}
}

func TestFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	fs, err := NewFileStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, err := fs.Get("k"); ok || err != nil {
		t.Fatalf("empty storage: ok=%v err=%v", ok, err)
	}
	if err := fs.Set("k", []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := fs.Set("k", []byte(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	v, ok, err := fs.Get("k")
	if err != nil || !ok || string(v) != `{"a":2}` {
		t.Fatalf("got %q ok=%v err=%v", v, ok, err)
	}
}

func TestSQLiteStorage(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cat := testCatalog()
	s := NewStore(db, cat, nil)
	if got := s.Load(); !got.Equal(Inventory(cat.Baseline())) {
		t.Fatalf("fresh db: %v", got)
	}
	x := s.Load()
	x["d"] = 1
	if err := s.Save(x); err != nil {
		t.Fatal(err)
	}
	x["d"] = 0
	if err := s.Save(x); err != nil {
		t.Fatal(err)
	}
	if got := s.Load(); got["d"] != 0 {
		t.Fatalf("last write should win, got %v", got)
	}
}

func TestInventoryHelpers(t *testing.T) {
	cat := testCatalog()
	inv := Inventory{"ssr": 0, "a": 0, "b": 0, "c": 0, "d": 0}
	if inv.AnyInStock(cat) {
		t.Fatalf("nothing in stock")
	}
	inv["c"] = 2
	if !inv.AnyInStock(cat) || inv.Total() != 2 || inv.Remaining("zzz") != 0 {
		t.Fatalf("helpers disagree: %v", inv)
	}
	if keys := inv.Keys(); keys[0] != "a" || keys[len(keys)-1] != "ssr" {
		t.Fatalf("keys not sorted: %v", keys)
	}
}
