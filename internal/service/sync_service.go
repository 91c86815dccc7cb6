package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-admin-dashboard/internal/catalog"
	"github.com/noah-isme/sma-admin-dashboard/internal/collection"
	"github.com/noah-isme/sma-admin-dashboard/pkg/jobs"
)

type moduleSource interface {
	Modules() []catalog.Module
	Module(name string) (catalog.Module, bool)
}

type resyncObserver interface {
	ObserveResync(entity string, err error)
}

// SyncConfig tunes the background resync of pending records.
type SyncConfig struct {
	Interval   time.Duration
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// SyncService retries pending remote calls through a job queue, one job per
// collection.
type SyncService struct {
	modules  moduleSource
	queue    *jobs.Queue
	metrics  resyncObserver
	logger   *zap.Logger
	interval time.Duration

	mu      sync.Mutex
	stop    context.CancelFunc
	done    chan struct{}
	reports map[string]collection.ResyncReport
}

// NewSyncService builds the sync service. Call Start to begin processing.
func NewSyncService(modules moduleSource, metrics resyncObserver, logger *zap.Logger, cfg SyncConfig) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	s := &SyncService{
		modules:  modules,
		metrics:  metrics,
		logger:   logger,
		interval: cfg.Interval,
		reports:  map[string]collection.ResyncReport{},
	}
	s.queue = jobs.NewQueue("resync", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers and the periodic sweep.
func (s *SyncService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.stop = cancel
	s.done = make(chan struct{})
	s.queue.Start(ctx)
	go s.loop(ctx, s.done)
}

// Stop halts the sweep and waits for in-flight jobs.
func (s *SyncService) Stop() {
	s.mu.Lock()
	cancel, done := s.stop, s.done
	s.stop = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.queue.Stop()
}

// Sweep enqueues a resync job for every module with pending records and
// returns how many were enqueued.
func (s *SyncService) Sweep() int {
	enqueued := 0
	for _, m := range s.modules.Modules() {
		if !m.HasRemote() || m.PendingCount() == 0 {
			continue
		}
		if err := s.queue.Enqueue(jobs.Job{Key: m.Name()}); err != nil {
			if !errors.Is(err, jobs.ErrDuplicate) {
				s.logger.Warn("enqueue resync failed", zap.String("entity", m.Name()), zap.Error(err))
			}
			continue
		}
		enqueued++
	}
	return enqueued
}

// Trigger runs one resync for the named module synchronously.
func (s *SyncService) Trigger(ctx context.Context, name string) (collection.ResyncReport, error) {
	m, ok := s.modules.Module(name)
	if !ok {
		return collection.ResyncReport{}, fmt.Errorf("unknown collection %q", name)
	}
	return s.run(ctx, m)
}

// LastReport returns the most recent report recorded for a module.
func (s *SyncService) LastReport(name string) (collection.ResyncReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[name]
	return r, ok
}

func (s *SyncService) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *SyncService) handle(ctx context.Context, job jobs.Job) error {
	m, ok := s.modules.Module(job.Key)
	if !ok {
		s.logger.Warn("resync job for unknown collection", zap.String("entity", job.Key))
		return nil
	}
	report, err := s.run(ctx, m)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%s: %d of %d pending records still failing", report.Entity, report.Failed, report.Attempted)
	}
	return nil
}

func (s *SyncService) run(ctx context.Context, m catalog.Module) (collection.ResyncReport, error) {
	report, err := m.Resync(ctx)
	if s.metrics != nil {
		s.metrics.ObserveResync(m.Name(), err)
	}
	if err != nil {
		s.logger.Warn("resync failed", zap.String("entity", m.Name()), zap.Error(err))
		return report, err
	}
	s.mu.Lock()
	s.reports[m.Name()] = report
	s.mu.Unlock()
	return report, nil
}
