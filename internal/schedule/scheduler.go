package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSpec fires daily at 06:05 local time.
const DefaultSpec = "5 6 * * *"

// Job produces the daily text for date.
type Job func(ctx context.Context, date time.Time) error

// standard 5-field cron parser (minute hour day month weekday)
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSpec validates a cron expression.
func ParseSpec(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("cron spec %q: %w", spec, err)
	}
	return nil
}

// Scheduler runs Job at most once per calendar day, recording the last
// successful day in StateFile.
type Scheduler struct {
	Spec       string
	StateFile  string
	Job        Job
	RunOnStart bool
	// Now defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Due reports whether no successful run is recorded for now's calendar day.
func (s *Scheduler) Due(now time.Time) (bool, error) {
	if s.StateFile == "" {
		return true, nil
	}
	st, err := LoadState(s.StateFile)
	if err != nil {
		return false, err
	}
	return !st.RanOn(now), nil
}

// RunIfDue runs the job for today unless it already succeeded today. The
// marker is only advanced when the job returns nil. Overlapping calls are
// serialized.
func (s *Scheduler) RunIfDue(ctx context.Context) (bool, error) {
	if s.Job == nil {
		return false, errors.New("schedule: no job")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	due, err := s.Due(now)
	if err != nil {
		return false, fmt.Errorf("load state: %w", err)
	}
	if !due {
		log.Debug().Str("date", now.Format(DateLayout)).Msg("daily text already produced")
		return false, nil
	}
	if err := s.Job(ctx, now); err != nil {
		return true, err
	}
	if s.StateFile != "" {
		if err := SaveState(s.StateFile, State{LastRunDate: now.Format(DateLayout)}); err != nil {
			return true, fmt.Errorf("save state: %w", err)
		}
	}
	return true, nil
}

// Start registers the job with cron and blocks until ctx is done. Running
// jobs are waited for before it returns.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := s.Spec
	if spec == "" {
		spec = DefaultSpec
	}
	if err := ParseSpec(spec); err != nil {
		return err
	}
	logger := cronLogger{}
	c := cron.New(cron.WithParser(parser), cron.WithLogger(logger), cron.WithChain(cron.Recover(logger)))
	if _, err := c.AddFunc(spec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	c.Start()
	log.Info().Str("schedule", spec).Msg("scheduler started")

	if s.RunOnStart {
		s.tick(ctx)
	}

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	log.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	ran, err := s.RunIfDue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled run failed")
		return
	}
	if ran {
		log.Info().Msg("scheduled run complete")
	}
}

// cronLogger routes cron's logr-style calls into zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
