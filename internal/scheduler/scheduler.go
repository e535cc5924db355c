// Package scheduler drives the Batch Orchestrator on a cron schedule,
// grounded on the teacher's internal/services/scheduler/scheduler_service.go
// (robfig/cron, a global mutex preventing overlapping runs, panic recovery
// around the job handler, last-run/last-error bookkeeping).
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atscrawl/internal/orchestrator"
)

// Service runs one named job — the batch orchestrator — on a cron
// expression, ensuring runs never overlap.
type Service struct {
	orch    *orchestrator.Orchestrator
	cron    *cron.Cron
	logger  arbor.ILogger
	runMu   sync.Mutex
	running bool

	mu        sync.Mutex
	lastRun   *time.Time
	lastError string
}

func NewService(orch *orchestrator.Orchestrator, logger arbor.ILogger) *Service {
	return &Service{orch: orch, cron: cron.New(), logger: logger}
}

// Start registers the batch job and begins the cron scheduler.
func (s *Service) Start(cronExpr string) error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if cronExpr == "" {
		cronExpr = "*/15 * * * *"
	}

	if _, err := s.cron.AddFunc(cronExpr, s.runBatch); err != nil {
		return fmt.Errorf("failed to register batch job: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().Str("cron_expr", cronExpr).Msg("scheduler started")
	return nil
}

// Stop halts the cron scheduler, waiting for any in-flight run to finish.
func (s *Service) Stop() error {
	if !s.running {
		return nil
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("scheduler stopped")
	return nil
}

// TriggerNow runs the batch immediately, outside the cron schedule.
func (s *Service) TriggerNow() {
	go s.runBatch()
}

// LastRun reports the most recent run's completion time and error, if any.
func (s *Service) LastRun() (*time.Time, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastError
}

func (s *Service) runBatch() {
	if !s.runMu.TryLock() {
		s.logger.Debug().Msg("batch already running, skipping this tick")
		return
	}
	defer s.runMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("panic recovered in scheduled batch")
			s.recordResult(fmt.Errorf("panic: %v", r))
		}
	}()

	start := time.Now()
	err := s.orch.RunOnce(context.Background())
	s.recordResult(err)

	if err != nil {
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("scheduled batch failed")
	} else {
		s.logger.Debug().Dur("duration", time.Since(start)).Msg("scheduled batch completed")
	}
}

func (s *Service) recordResult(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastRun = &now
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
}
