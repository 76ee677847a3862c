package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/demon-soldier/sanctuary-poll/internal/domain"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/contract"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/entity"
	"github.com/demon-soldier/sanctuary-poll/internal/metrics"
	"github.com/robfig/cron/v3"
)

type scheduler struct {
	pollService contract.PollService
	metrics     *metrics.Metrics
	cron        *cron.Cron
	now         func() time.Time

	mu         sync.Mutex
	running    bool
	registered bool
	runCtx     context.Context
	started    atomic.Bool
	stopChan   chan struct{}
}

func newScheduler(pollService contract.PollService, m *metrics.Metrics) *scheduler {
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn))

	return &scheduler{
		pollService: pollService,
		metrics:     m,
		cron: cron.New(
			cron.WithLocation(domain.KST),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		now: time.Now,
	}
}

// Start registers the daily check and begins running it once ready is closed.
// Nothing fires before the chat session is ready.
func (s *scheduler) Start(ctx context.Context, ready <-chan struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// The entry survives Stop, so a restart must not add it again
	if !s.registered {
		if _, err := s.cron.AddFunc(domain.CheckSpec, s.runCheck); err != nil {
			return fmt.Errorf("failed to register daily check: %w", err)
		}
		s.registered = true
	}
	s.runCtx = ctx
	s.stopChan = make(chan struct{})
	s.running = true

	slog.Info("Scheduler waiting for session to be ready", "spec", domain.CheckSpec, "location", domain.KST.String())
	go s.waitAndStart(ctx, ready, s.stopChan)
	return nil
}

func (s *scheduler) runCheck() {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()

	s.Tick(ctx)
}

func (s *scheduler) waitAndStart(ctx context.Context, ready <-chan struct{}, stopChan <-chan struct{}) {
	select {
	case <-ready:
	case <-ctx.Done():
		return
	case <-stopChan:
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	s.cron.Start()
	s.started.Store(true)
	slog.Info("Scheduler started", "next_check", s.nextCheck().Format(time.RFC3339))
}

func (s *scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	slog.Info("Scheduler stopping...")
	close(s.stopChan)
	s.running = false
	s.mu.Unlock()

	// Waits for a firing in progress
	<-s.cron.Stop().Done()
	s.started.Store(false)
}

// Tick runs one daily check and reports whether the weekly poll fired
func (s *scheduler) Tick(ctx context.Context) bool {
	now := s.now().In(domain.KST)

	if now.Weekday() != domain.TriggerWeekday {
		slog.Debug("Not a trigger day, waiting", "weekday", now.Weekday().String())
		s.metrics.RecordCheck(false)
		return false
	}

	s.metrics.RecordCheck(true)
	deliveries := s.pollService.SendScheduledPoll(ctx)

	sent := 0
	for _, d := range deliveries {
		if d.Status == entity.DeliverySent {
			sent++
		}
	}
	slog.Info("Weekly poll fired", "sent", sent, "destinations", len(deliveries))
	return true
}

func (s *scheduler) nextCheck() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
