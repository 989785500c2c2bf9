package schedule

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Resetter is the part of the draw controller a reset job needs.
type Resetter interface {
	ResetInventory()
}

// ResetJob restores the inventory baseline on a cron schedule, e.g. at the
// start of every event day.
type ResetJob struct {
	target Resetter
	log    *slog.Logger
}

func NewResetJob(target Resetter, log *slog.Logger) *ResetJob {
	return &ResetJob{target: target, log: log}
}

// Run implements cron.Job.
func (j *ResetJob) Run() {
	j.log.Info("scheduled inventory reset")
	j.target.ResetInventory()
}

// Start parses spec (standard 5-field cron, or descriptors like "@daily") and
// starts a scheduler running job. Stop the returned cron to end it.
func Start(spec string, job cron.Job) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("invalid reset schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
