// Package retention prunes stored LLM request events on a schedule.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/quizwise/internal/store"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Pruner deletes LLM events older than a fixed number of days.
type Pruner struct {
	events store.EventRepo
	keep   time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewPruner creates a Pruner that keeps days of history.
func NewPruner(events store.EventRepo, days int, log *zap.Logger) *Pruner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pruner{
		events: events,
		keep:   time.Duration(days) * 24 * time.Hour,
		log:    log.Named("retention"),
		now:    time.Now,
	}
}

// Prune removes expired events and returns how many were deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.keep)
	n, err := p.events.PruneLLMEvents(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune llm events: %w", err)
	}
	p.log.Info("pruned llm events", zap.Int64("deleted", n), zap.Time("before", cutoff))
	return n, nil
}

// Scheduler runs a Pruner every interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
}

// Start schedules p every interval, running once immediately.
func Start(p *Pruner, interval time.Duration) (*Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(interval).Do(func() {
		if _, err := p.Prune(context.Background()); err != nil {
			p.log.Error("retention run failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule retention: %w", err)
	}
	s.StartAsync()
	return &Scheduler{scheduler: s}, nil
}

// Stop terminates the schedule.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
