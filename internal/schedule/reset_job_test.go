package schedule

import (
	"testing"

	"github.com/xtding233/prize-gacha/internal/logger"
)

type countingResetter struct{ n int }

func (c *countingResetter) ResetInventory() { c.n++ }

func TestResetJobRun(t *testing.T) {
	r := &countingResetter{}
	NewResetJob(r, logger.Discard()).Run()
	if r.n != 1 {
		t.Fatalf("reset called %d times", r.n)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	if _, err := Start("every tuesday", NewResetJob(&countingResetter{}, logger.Discard())); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestStartSchedules(t *testing.T) {
	c, err := Start("@daily", NewResetJob(&countingResetter{}, logger.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Stop()
	if n := len(c.Entries()); n != 1 {
		t.Fatalf("entries %d", n)
	}
}
