package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Warmer recomputes cached aggregates.
type Warmer interface {
	Warm(ctx context.Context) error
}

// Scheduler periodically re-warms the dashboard caches so readers rarely
// pay for a full table scan.
type Scheduler struct {
	warmer   Warmer
	logger   *logrus.Logger
	cron     *cron.Cron
	schedule string
	timeout  time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// NewScheduler validates schedule, a five field cron spec or a descriptor
// such as "@every 4m".
func NewScheduler(warmer Warmer, schedule string, logger *logrus.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}

	cronLogger := cron.PrintfLogger(logger)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		warmer:   warmer,
		logger:   logger,
		schedule: schedule,
		timeout:  time.Minute,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start warms once immediately and then on every tick of the schedule.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runWarm); err != nil {
		return fmt.Errorf("failed to schedule cache warming: %w", err)
	}
	s.started = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("Running startup cache warm")
		s.runWarm()
	}()

	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("Cache warm scheduler started")
	return nil
}

// RunNow warms synchronously, outside the schedule.
func (s *Scheduler) RunNow() error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	return s.warmer.Warm(ctx)
}

func (s *Scheduler) runWarm() {
	start := time.Now()
	if err := s.RunNow(); err != nil {
		s.logger.WithError(err).Error("Failed to warm dashboard caches")
		return
	}
	s.logger.WithField("duration", time.Since(start).String()).Debug("Cache warm completed")
}

// Stop cancels a warm in progress and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cache warm scheduler")
	s.cancel()

	<-s.cron.Stop().Done()
	s.wg.Wait()
}
