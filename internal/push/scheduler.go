package push

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/streek/internal/model"
	"github.com/dukerupert/streek/internal/recurrence"
)

type ChallengeLister interface {
	List() ([]model.Challenge, error)
}

// Scheduler sends one reminder a day, at the configured hour, listing
// challenges due that day and not yet completed.
type Scheduler struct {
	mu         sync.RWMutex
	notifier   *Notifier
	challenges ChallengeLister
	hour       int
	interval   time.Duration
	now        func() time.Time
	lastSent   string
	cancel     context.CancelFunc
	done       chan struct{}
	logger     *slog.Logger
}

func NewScheduler(n *Notifier, challenges ChallengeLister, hour int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		notifier:   n,
		challenges: challenges,
		hour:       hour,
		interval:   time.Minute,
		now:        time.Now,
		logger:     logger.With("component", "reminders"),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// tick reports whether a reminder went out.
func (s *Scheduler) tick() bool {
	now := s.now()
	if now.Hour() != s.hour {
		return false
	}
	day := now.Format(model.DateLayout)
	if s.lastSent == day {
		return false
	}

	challenges, err := s.challenges.List()
	if err != nil {
		s.logger.Error("list challenges", "error", err)
		return false
	}

	pending := pendingToday(challenges, now)
	s.lastSent = day
	if len(pending) == 0 {
		return false
	}

	body := fmt.Sprintf("%d challenges still open today. Keep your streaks alive!", len(pending))
	if len(pending) == 1 {
		body = fmt.Sprintf("%s is still open today. Keep your %d-day streak alive!", pending[0].Name, pending[0].Streak)
	}

	sent := s.notifier.SendAll(Payload{
		Title: "Streak reminder",
		Body:  body,
		URL:   "/challenges",
		Tag:   "daily-reminder",
	})
	s.logger.Info("daily reminder", "pending", len(pending), "sent", sent)
	return true
}

func pendingToday(challenges []model.Challenge, now time.Time) []model.Challenge {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var pending []model.Challenge
	for _, c := range challenges {
		if !recurrence.DueOn(c.Frequency, c.CreatedAt, now) {
			continue
		}
		if c.LastCompletedAt == nil || c.LastCompletedAt.Before(start) {
			pending = append(pending, c)
		}
	}
	return pending
}
