package scheduler

import (
	"context"
	"time"

	"tg_checkin_bot/internal/domain/checkin"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner is the slice of the check-in service the scheduler drives.
type Runner interface {
	Run(ctx context.Context, p checkin.Provider) (*checkin.Report, error)
}

// CheckInScheduler runs periodic check-ins for the configured providers on
// a cron schedule. Providers run sequentially within a tick; there is one
// chat session per run and no parallel rounds.
type CheckInScheduler struct {
	cronEngine *cron.Cron
	runner     Runner
	providers  []checkin.Provider
	cronSpec   string
	logger     *logrus.Logger
}

func NewCheckInScheduler(
	runner Runner,
	providers []checkin.Provider,
	cronSpec string, // e.g., "0 9 * * *" (9:00 AM daily)
	logger *logrus.Logger,
) *CheckInScheduler {
	return &CheckInScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		runner:     runner,
		providers:  providers,
		cronSpec:   cronSpec,
		logger:     logger,
	}
}

func (s *CheckInScheduler) Start() error {
	s.logger.Info("starting check-in scheduler")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Infof("cron tick: running %d provider(s)", len(s.providers))
		// Generous bound: each provider waits out its settle durations.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		s.runAll(ctx)
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Infof("check-in scheduler started with spec %q", s.cronSpec)
	return nil
}

func (s *CheckInScheduler) runAll(ctx context.Context) {
	for _, p := range s.providers {
		report, err := s.runner.Run(ctx, p)
		if err != nil {
			// Expired authorization needs operator action; later
			// ticks would fail the same way, but keep ticking so
			// a refreshed session string picks up without restart.
			s.logger.Errorf("scheduled %s run aborted: %v", p.Name, err)
			continue
		}
		if p.AcceptableOutcome(report.Status) {
			s.logger.Infof("scheduled %s run finished: %s", p.Name, report.Status)
		} else {
			s.logger.Warnf("scheduled %s run did not achieve its goal: %s", p.Name, report.Status)
		}
	}
}

func (s *CheckInScheduler) Stop() {
	s.logger.Info("stopping check-in scheduler")
	ctx := s.cronEngine.Stop() // Waits for running jobs.
	<-ctx.Done()
	s.logger.Info("check-in scheduler gracefully stopped")
}
