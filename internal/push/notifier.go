package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/streek/internal/model"
)

type Subscriptions interface {
	List() ([]model.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
}

// Preferences exposes the profile's notifications setting.
type Preferences interface {
	Get() (*model.Profile, error)
}

// Broadcaster fans change events out to connected clients.
type Broadcaster interface {
	Notify(entity, action, id string, extra map[string]any)
}

// Notifier announces streak milestones on the live feed and, when the user
// has notifications on, as Web Push.
type Notifier struct {
	sender   Sender
	subs     Subscriptions
	prefs    Preferences
	hub      Broadcaster
	dispatch func(func())
	inflight sync.WaitGroup
	logger   *slog.Logger
}

// NewNotifier creates a notifier. sender may be nil when no VAPID keys are
// configured; milestones then only reach the live feed.
func NewNotifier(sender Sender, subs Subscriptions, prefs Preferences, hub Broadcaster, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:   sender,
		subs:     subs,
		prefs:    prefs,
		hub:      hub,
		dispatch: func(f func()) { go f() },
		logger:   logger.With("component", "push"),
	}
}

func (n *Notifier) NotifyMilestone(ctx context.Context, c model.Challenge, message string) {
	if n.hub != nil {
		n.hub.Notify("challenge", "milestone", c.ID, map[string]any{
			"streak":  c.Streak,
			"message": message,
		})
	}

	payload := Payload{
		Title: fmt.Sprintf("%s: %d-day streak", c.Name, c.Streak),
		Body:  message,
		URL:   "/challenges",
		Tag:   "milestone-" + c.ID,
	}
	n.inflight.Add(1)
	n.dispatch(func() {
		defer n.inflight.Done()
		n.SendAll(payload)
	})
}

// Wait blocks until every dispatched milestone push has finished.
func (n *Notifier) Wait() {
	n.inflight.Wait()
}

// SendAll delivers payload to every subscription, removing expired ones.
// It does nothing when notifications are disabled in the profile.
func (n *Notifier) SendAll(payload Payload) int {
	if n.sender == nil || !n.enabled() {
		return 0
	}

	subs, err := n.subs.List()
	if err != nil {
		n.logger.Error("list subscriptions", "error", err)
		return 0
	}

	var sent int
	for _, sub := range subs {
		if err := n.sender.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				n.logger.Info("removing expired subscription", "id", sub.ID)
				if err := n.subs.DeleteByEndpoint(sub.Endpoint); err != nil {
					n.logger.Error("delete expired subscription", "id", sub.ID, "error", err)
				}
				continue
			}
			n.logger.Error("send push", "id", sub.ID, "tag", payload.Tag, "error", err)
			continue
		}
		sent++
	}
	notificationsSent.Add(float64(sent))
	return sent
}

func (n *Notifier) enabled() bool {
	p, err := n.prefs.Get()
	if err != nil {
		n.logger.Error("load notification preference", "error", err)
		return false
	}
	return p != nil && p.Settings.Notifications
}
