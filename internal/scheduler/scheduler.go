// Package scheduler runs the periodic autopay collection.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"charity/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const runTimeout = 10 * time.Minute

type Collector interface {
	CollectAutoPay(ctx context.Context, amountMinor int64) (services.AutoPayReport, error)
}

type AutoPay struct {
	cron      *cron.Cron
	collector Collector
	amount    int64
	logger    logrus.FieldLogger

	mu      sync.Mutex
	cancel  context.CancelFunc
	lastRun services.AutoPayReport
}

// NewAutoPay parses spec (standard five field cron syntax or a descriptor
// such as "@daily") and registers the collection job. Overlapping runs are
// skipped.
func NewAutoPay(spec string, amountMinor int64, collector Collector, logger logrus.FieldLogger) (*AutoPay, error) {
	if amountMinor <= 0 {
		return nil, errors.New("autopay amount must be greater than zero")
	}
	cronLogger := cronLogger{logger: logger}
	s := &AutoPay{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		collector: collector,
		amount:    amountMinor,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AutoPay) Start() {
	s.cron.Start()
	s.logger.WithField("next_run", s.Next()).Info("autopay scheduler started")
}

// Stop halts the schedule, cancels a collection in progress and waits for it
// to return or for ctx to expire.
func (s *AutoPay) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AutoPay) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *AutoPay) LastRun() services.AutoPayReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *AutoPay) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}()
	s.RunOnce(ctx)
}

// RunOnce performs a single collection pass.
func (s *AutoPay) RunOnce(ctx context.Context) services.AutoPayReport {
	start := time.Now()
	report, err := s.collector.CollectAutoPay(ctx, s.amount)
	fields := logrus.Fields{
		"collected":    report.Collected,
		"insufficient": report.Insufficient,
		"failed":       report.Failed,
		"duration_ms":  time.Since(start).Milliseconds(),
	}
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("autopay run aborted")
	} else {
		s.logger.WithFields(fields).Info("autopay run finished")
	}
	s.mu.Lock()
	s.lastRun = report
	s.mu.Unlock()
	return report
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	logger logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.WithFields(pairs(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.WithError(err).WithFields(pairs(keysAndValues)).Error("cron: " + msg)
}

func pairs(keysAndValues []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
