package rewards

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rewardsClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streek_rewards_claimed_total",
		Help: "Number of rewards claimed.",
	})
	pointsSpent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streek_points_spent_total",
		Help: "Points spent on claimed rewards.",
	})
)
