package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers pipeline runs on a cron schedule. The schedule is
// evaluated in the configured report timezone so daily windows line up
// with the run cadence.
type Scheduler struct {
	runner  *Runner
	cron    *cron.Cron
	entryID cron.EntryID
}

// NewScheduler registers the runner under the given five-field cron
// expression, evaluated in location.
func NewScheduler(runner *Runner, schedule string, location *time.Location) (*Scheduler, error) {
	s := &Scheduler{
		runner: runner,
		cron:   cron.New(cron.WithLocation(location)),
	}

	entryID, err := s.cron.AddFunc(schedule, s.run)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	s.entryID = entryID

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Scheduler started", "next_run", s.cron.Entry(s.entryID).Next.Format(time.RFC3339))
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) run() {
	s.runner.Run(context.Background())
}
