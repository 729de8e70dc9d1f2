// Package challenge implements the challenge tracker: adding recurring
// activity challenges and marking them complete with photo proof.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dukerupert/streek/internal/catalog"
	"github.com/dukerupert/streek/internal/model"
)

var (
	// ErrValidation marks input the user must correct before retrying.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when no challenge has the requested id.
	ErrNotFound = errors.New("challenge not found")
	// ErrAlreadyCompleted is returned when completions are limited to one per
	// day and the challenge was already completed today.
	ErrAlreadyCompleted = errors.New("challenge already completed today")
)

// Milestone streak lengths that trigger a notification.
const (
	MilestoneWeek  = 7
	MilestoneMonth = 30
)

// Store is the persistence the tracker needs.
type Store interface {
	Create(id, name, frequency string) (*model.Challenge, error)
	GetByID(id string) (*model.Challenge, error)
	List() ([]model.Challenge, error)
	RecordCompletion(id, proofURI string, at time.Time) (*model.Challenge, error)
	RecordCompletionOnce(id, proofURI string, at, dayStart time.Time) (*model.Challenge, bool, error)
}

// MilestoneNotifier is told when a completion lands exactly on a milestone streak.
type MilestoneNotifier interface {
	NotifyMilestone(ctx context.Context, c model.Challenge, message string)
}

// CompletionListener receives every applied completion.
type CompletionListener interface {
	ChallengeCompleted(ctx context.Context, c model.Challenge, at time.Time) error
}

type AddInput struct {
	ActivityType    string `json:"activity_type" validate:"required"`
	Frequency       string `json:"frequency" validate:"required"`
	CustomFrequency string `json:"custom_frequency"`
}

// Completion is the outcome of MarkComplete.
type Completion struct {
	Challenge *model.Challenge `json:"challenge"`
	Applied   bool             `json:"applied"`
	Milestone int              `json:"milestone,omitempty"`
	Message   string           `json:"message,omitempty"`
}

type Option func(*Tracker)

// WithOncePerDay limits each challenge to one completion per calendar day.
func WithOncePerDay(enabled bool) Option {
	return func(t *Tracker) { t.oncePerDay = enabled }
}

func WithNotifier(n MilestoneNotifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

func WithListener(l CompletionListener) Option {
	return func(t *Tracker) { t.listener = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

type Tracker struct {
	store      Store
	validate   *validator.Validate
	notifier   MilestoneNotifier
	listener   CompletionListener
	oncePerDay bool
	now        func() time.Time
	logger     *slog.Logger
}

func NewTracker(store Store, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		validate: validator.New(),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) List(ctx context.Context) ([]model.Challenge, error) {
	return t.store.List()
}

// AddChallenge validates the selection and appends a new challenge with a
// zero streak. Nothing is stored when validation fails.
func (t *Tracker) AddChallenge(ctx context.Context, in AddInput) (*model.Challenge, error) {
	in.ActivityType = strings.TrimSpace(in.ActivityType)
	in.Frequency = strings.TrimSpace(in.Frequency)
	in.CustomFrequency = strings.TrimSpace(in.CustomFrequency)

	if err := t.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: please select both activity type and frequency", ErrValidation)
	}

	frequency := in.Frequency
	if frequency == catalog.CustomFrequency {
		if in.CustomFrequency == "" {
			return nil, fmt.Errorf("%w: please enter a custom frequency", ErrValidation)
		}
		frequency = in.CustomFrequency
	}

	c, err := t.store.Create(uuid.NewString(), in.ActivityType, frequency)
	if err != nil {
		return nil, fmt.Errorf("add challenge: %w", err)
	}

	challengesAdded.Inc()
	t.logger.Info("challenge added", "id", c.ID, "name", c.Name, "frequency", c.Frequency)
	return c, nil
}

// MarkComplete records a completion for the challenge. Proof is required.
// When the user is not satisfied nothing changes and the caller may retry.
func (t *Tracker) MarkComplete(ctx context.Context, id, proofURI string, satisfied bool) (Completion, error) {
	proofURI = strings.TrimSpace(proofURI)
	if proofURI == "" {
		return Completion{}, fmt.Errorf("%w: please upload a photo as proof of your activity", ErrValidation)
	}

	if !satisfied {
		existing, err := t.store.GetByID(id)
		if err != nil {
			return Completion{}, fmt.Errorf("mark complete: %w", err)
		}
		if existing == nil {
			return Completion{}, ErrNotFound
		}
		return Completion{Challenge: existing, Applied: false}, nil
	}

	now := t.now()
	var c *model.Challenge
	var err error
	if t.oncePerDay {
		var applied bool
		c, applied, err = t.store.RecordCompletionOnce(id, proofURI, now, startOfDay(now))
		if err == nil && c != nil && !applied {
			return Completion{Challenge: c}, ErrAlreadyCompleted
		}
	} else {
		c, err = t.store.RecordCompletion(id, proofURI, now)
	}
	if err != nil {
		return Completion{}, fmt.Errorf("mark complete: %w", err)
	}
	if c == nil {
		return Completion{}, ErrNotFound
	}

	completions.Inc()
	result := Completion{
		Challenge: c,
		Applied:   true,
		Milestone: milestoneFor(c.Streak),
		Message:   MessageFor(c.Streak),
	}

	t.logger.Info("challenge completed", "id", c.ID, "name", c.Name, "streak", c.Streak)

	if result.Milestone != 0 {
		milestonesReached.WithLabelValues(fmt.Sprint(result.Milestone)).Inc()
		if t.notifier != nil {
			t.notifier.NotifyMilestone(ctx, *c, result.Message)
		}
	}

	if t.listener != nil {
		if err := t.listener.ChallengeCompleted(ctx, *c, now); err != nil {
			// The completion itself stands; the listener is best effort.
			t.logger.Error("completion listener", "id", c.ID, "error", err)
		}
	}

	return result, nil
}

// MessageFor returns the message shown after a completion reaching streak.
func MessageFor(streak int) string {
	switch streak {
	case MilestoneWeek:
		return "Awesome! You reached a 7-day streak! 🔥"
	case MilestoneMonth:
		return "Incredible! You reached a 30-day streak! 🏆"
	default:
		return fmt.Sprintf("Great job! Your streak is now %d days.", streak)
	}
}

func milestoneFor(streak int) int {
	if streak == MilestoneWeek || streak == MilestoneMonth {
		return streak
	}
	return 0
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
