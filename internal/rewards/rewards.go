// Package rewards implements the points ledger: claiming rewards against a
// balance and looking up points earned over a date range.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/streek/internal/model"
)

var ErrNotFound = errors.New("reward not found")

// ClaimResult is the outcome of a claim attempt. Balance is the balance after
// the attempt, unchanged when Applied is false.
type ClaimResult struct {
	Applied bool         `json:"applied"`
	Balance int          `json:"balance"`
	Reward  model.Reward `json:"reward"`
}

// Claim applies the claim policy. A reward that is already claimed or costs
// more than the balance is a silent no-op.
func Claim(r model.Reward, balance int) ClaimResult {
	if r.Claimed || balance < r.Points {
		return ClaimResult{Balance: balance, Reward: r}
	}
	r.Claimed = true
	return ClaimResult{Applied: true, Balance: balance - r.Points, Reward: r}
}

type Store interface {
	GetByID(id string) (*model.Reward, error)
	List() ([]model.Reward, error)
	MarkClaimed(id string, at time.Time) (bool, error)
}

type Ledger struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

func NewLedger(store Store, logger *slog.Logger) *Ledger {
	return &Ledger{store: store, now: time.Now, logger: logger}
}

func (l *Ledger) List(ctx context.Context) ([]model.Reward, error) {
	return l.store.List()
}

// ClaimReward claims the reward against currentBalance. The claimed flag is
// persisted with a conditional update so two concurrent claims of the same
// reward cannot both apply.
func (l *Ledger) ClaimReward(ctx context.Context, id string, currentBalance int) (ClaimResult, error) {
	r, err := l.store.GetByID(id)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("claim reward: %w", err)
	}
	if r == nil {
		return ClaimResult{}, ErrNotFound
	}

	result := Claim(*r, currentBalance)
	if !result.Applied {
		l.logger.Debug("reward claim skipped", "id", id, "claimed", r.Claimed, "cost", r.Points, "balance", currentBalance)
		return result, nil
	}

	at := l.now()
	ok, err := l.store.MarkClaimed(id, at)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("claim reward: %w", err)
	}
	if !ok {
		// Lost the race to another claim.
		r.Claimed = true
		return ClaimResult{Balance: currentBalance, Reward: *r}, nil
	}

	result.Reward.ClaimedAt = &at
	rewardsClaimed.Inc()
	pointsSpent.Add(float64(r.Points))
	l.logger.Info("reward claimed", "id", id, "name", r.Name, "cost", r.Points, "balance", result.Balance)
	return result, nil
}
