package challenge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	challengesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streek_challenges_added_total",
		Help: "Total number of challenges added",
	})
	completions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streek_challenge_completions_total",
		Help: "Total number of applied challenge completions",
	})
	milestonesReached = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streek_streak_milestones_total",
			Help: "Total number of streak milestones reached",
		},
		[]string{"streak"},
	)
)
