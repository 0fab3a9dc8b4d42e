package trigger

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler fires ScheduledSweep events on cron schedules
type Scheduler struct {
	cron       *cron.Cron
	dispatcher *Dispatcher
	log        *zap.Logger
}

// NewScheduler registers one job per non-empty schedule. Specs accept the
// standard five fields and descriptors such as "@every 2m". Pass
// cron.WithLocation to evaluate them in the same zone as the missed cutoff.
func NewScheduler(ctx context.Context, schedules map[SweepKind]string, dispatcher *Dispatcher, log *zap.Logger, opts ...cron.Option) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(opts...),
		dispatcher: dispatcher,
		log:        log.Named("scheduler"),
	}
	for _, kind := range SweepKinds {
		spec := schedules[kind]
		if spec == "" {
			s.log.Info("sweep disabled", zap.String("kind", string(kind)))
			continue
		}
		kind := kind
		job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
			s.dispatcher.Handle(ctx, ScheduledSweep{Kind: kind})
		}))
		if _, err := s.cron.AddJob(spec, job); err != nil {
			return nil, fmt.Errorf("schedule %s %q: %w", kind, spec, err)
		}
		s.log.Info("sweep scheduled", zap.String("kind", string(kind)), zap.String("spec", spec))
	}
	return s, nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.log.Info("starting scheduler", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop prevents further runs and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}
