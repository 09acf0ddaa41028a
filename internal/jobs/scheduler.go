package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"photodoc/internal/retention"
)

// Scheduler is the external-scheduler hook the retention manager expects: a
// cron that invokes Cleanup on the configured cadence. Cleanup itself never
// self-schedules.
type Scheduler struct {
	cron       *cron.Cron
	retention  *retention.Manager
	daysToKeep int
	spec       string
	log        zerolog.Logger
}

func NewScheduler(rm *retention.Manager, daysToKeep int, spec string, log zerolog.Logger) *Scheduler {
	if spec == "" {
		spec = "0 0 3 * * *"
	}
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		retention:  rm,
		daysToKeep: daysToKeep,
		spec:       spec,
		log:        log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runCleanup); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Int("days_to_keep", s.daysToKeep).Msg("retention scheduler started")
	return nil
}

// Stop halts scheduling and waits briefly for a running cleanup to finish.
func (s *Scheduler) Stop() {
	select {
	case <-s.cron.Stop().Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("retention scheduler stop timed out")
	}
}

func (s *Scheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed := s.retention.Cleanup(ctx, s.daysToKeep)
	s.log.Info().Int("removed", removed).Msg("scheduled retention cleanup ran")
}
