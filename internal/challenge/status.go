package challenge

import (
	"context"
	"time"

	"github.com/dukerupert/streek/internal/model"
	"github.com/dukerupert/streek/internal/recurrence"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusNotDue    Status = "not_due"
)

// WithStatus is a challenge annotated with where it stands today.
type WithStatus struct {
	model.Challenge
	Status   Status     `json:"status"`
	DueDate  *time.Time `json:"due_date"`
	Schedule string     `json:"schedule"`
}

// ComputeStatus determines the status and current due date of c on today.
// Frequencies that name no concrete schedule are due every day.
func ComputeStatus(c model.Challenge, today time.Time) (Status, *time.Time) {
	rule, err := recurrence.FromFrequency(c.Frequency)
	if err != nil {
		rule = recurrence.Rule{Freq: recurrence.Daily, Interval: 1}
	}

	due, ok := rule.Previous(c.CreatedAt, today)
	if !ok {
		return StatusNotDue, nil
	}

	if c.LastCompletedAt != nil && !startOfDay(c.LastCompletedAt.In(today.Location())).Before(due) {
		return StatusCompleted, &due
	}
	if due.Before(startOfDay(today)) {
		return StatusOverdue, &due
	}
	return StatusPending, &due
}

// Schedule describes c's frequency, falling back to the label itself.
func Schedule(c model.Challenge) string {
	rule, err := recurrence.FromFrequency(c.Frequency)
	if err != nil {
		return c.Frequency
	}
	return rule.Describe()
}

// Today lists every challenge with its status for the current day.
func (t *Tracker) Today(ctx context.Context) ([]WithStatus, error) {
	challenges, err := t.store.List()
	if err != nil {
		return nil, err
	}
	now := t.now()
	out := make([]WithStatus, 0, len(challenges))
	for _, c := range challenges {
		status, due := ComputeStatus(c, now)
		out = append(out, WithStatus{Challenge: c, Status: status, DueDate: due, Schedule: Schedule(c)})
	}
	return out, nil
}
