package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// InboxJobs is the inbox work the scheduler drives
type InboxJobs interface {
	ProcessPending(ctx context.Context) (int, error)
	Cleanup(ctx context.Context) (int, error)
}

// GaugeRefresher publishes collection gauges
type GaugeRefresher interface {
	RefreshGauge(ctx context.Context) error
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron       *cron.Cron
	inbox      InboxJobs
	collection GaugeRefresher
	logger     *logrus.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	initial sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(inbox InboxJobs, collection GaugeRefresher, logger *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger{logger}),
			cron.SkipIfStillRunning(cronLogger{logger}),
		)),
		inbox:      inbox,
		collection: collection,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every 5 minutes: mine pending inbox items
	if _, err := s.cron.AddFunc("*/5 * * * *", s.runProcessInbox); err != nil {
		return fmt.Errorf("failed to add inbox job: %w", err)
	}

	// Every hour: purge expired inbox items
	if _, err := s.cron.AddFunc("0 * * * *", s.runInboxCleanup); err != nil {
		return fmt.Errorf("failed to add inbox cleanup job: %w", err)
	}

	// Every minute: refresh collection gauges
	if _, err := s.cron.AddFunc("* * * * *", s.runRefreshGauge); err != nil {
		return fmt.Errorf("failed to add gauge job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Catch up on anything submitted while the daemon was down
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.runRefreshGauge()
		s.runProcessInbox()
	}()

	return nil
}

// Stop stops the scheduler and waits for running jobs to return
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	<-s.cron.Stop().Done()
	s.initial.Wait()
	s.logger.Info("Scheduler stopped")
}

// runProcessInbox executes the inbox processing job
func (s *Scheduler) runProcessInbox() {
	s.logger.Debug("Running scheduled inbox processing")

	processed, err := s.inbox.ProcessPending(s.ctx)
	if err != nil {
		s.logger.WithError(err).Error("Inbox processing job failed")
		return
	}
	if processed > 0 {
		s.logger.WithField("count", processed).Info("Inbox processing job completed")
	}
}

// runInboxCleanup executes the expired inbox purge
func (s *Scheduler) runInboxCleanup() {
	s.logger.Debug("Running scheduled inbox cleanup")

	if _, err := s.inbox.Cleanup(s.ctx); err != nil {
		s.logger.WithError(err).Error("Inbox cleanup job failed")
	}
}

// runRefreshGauge executes the gauge refresh job
func (s *Scheduler) runRefreshGauge() {
	if err := s.collection.RefreshGauge(s.ctx); err != nil {
		s.logger.WithError(err).Warn("Gauge refresh failed")
	}
}

// cronLogger routes cron's own messages through logrus
type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithError(err).WithFields(fields(keysAndValues)).Error("cron: " + msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	out := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return out
}
