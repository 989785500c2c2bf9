package locale

import (
	"strings"
	"testing"
)

func TestEnglish(t *testing.T) {
	m := MustNew("en")
	if got := m.Awarded("Sticker"); got != "You won: Sticker" {
		t.Fatalf("got %q", got)
	}
	got := m.Declined("SSR", []string{"B", "C", "D"})
	if !strings.Contains(got, "SSR") || !strings.Contains(got, "B, C, D") {
		t.Fatalf("got %q", got)
	}
}

func TestJapanese(t *testing.T) {
	m := MustNew("ja")
	if got := m.Exhausted(); got != "すべての景品が在庫切れです。" {
		t.Fatalf("got %q", got)
	}
	if got := m.Declined("特賞", []string{"B賞", "C賞"}); !strings.Contains(got, "B賞・C賞") {
		t.Fatalf("got %q", got)
	}
}

func TestUnknownFallsBackToEnglish(t *testing.T) {
	m := MustNew("xx")
	if got := m.ResetDone(); got != "Inventory restored to its initial state." {
		t.Fatalf("got %q", got)
	}
}

func TestTriggerDisabledNamesDecline(t *testing.T) {
	if got := MustNew("en").TriggerDisabled(); !strings.Contains(got, "Decline") || !strings.Contains(got, "reset") {
		t.Fatalf("got %q", got)
	}
	if got := MustNew("ja").TriggerDisabled(); !strings.Contains(got, "辞退") || !strings.Contains(got, "リセット") {
		t.Fatalf("got %q", got)
	}
}
