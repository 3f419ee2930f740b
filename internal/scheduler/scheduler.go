// Package scheduler runs tasks on 5-field cron schedules. Next-occurrence
// computation is delegated to the cron library; the runner guarantees that
// at most one run per entry is pending and that a slow or failing run never
// triggers catch-up runs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"lunchcheck_bot/internal/logger"
)

// Task is one scheduled unit of work. The context is canceled when the
// scheduler stops; an in-flight run decides for itself whether to honor it.
type Task func(ctx context.Context)

type entry struct {
	name     string
	schedule cron.Schedule
	task     Task
}

// Scheduler owns a set of cron entries and one goroutine per entry once
// started. It carries no business data.
type Scheduler struct {
	mu      sync.Mutex
	entries []entry
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	nowFunc func() time.Time
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{nowFunc: time.Now}
}

// Schedule registers a recurring task under a 5-field cron expression.
// Registration after Start has no effect until the next Start.
func (s *Scheduler) Schedule(name, expr string, task Task) error {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{name: name, schedule: schedule, task: task})
	return nil
}

// Start begins executing all registered entries.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, e := range s.entries {
		s.wg.Add(1)
		go func(e entry) {
			defer s.wg.Done()
			s.run(ctx, e)
		}(e)
	}
	logger.L().Infof("Scheduler started with %d entries", len(s.entries))
}

// Stop prevents future runs and waits for in-flight runs to return. It does
// not interrupt a currently executing run beyond canceling its context.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.cancel = nil
	logger.L().Info("Scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, e entry) {
	for {
		now := s.nowFunc()
		next := e.schedule.Next(now)
		wait := next.Sub(now)
		if wait <= 0 {
			wait = time.Second
		}

		timer := time.NewTimer(wait)
		logger.L().Debugf("Schedule %s: next run at %s", e.name, next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			e.task(ctx)
			// next occurrence is recomputed from the post-run clock, so a
			// run longer than the interval skips missed occurrences instead
			// of queuing catch-up runs
		}
	}
}
