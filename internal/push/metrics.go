package push

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: "streek_push_notifications_sent_total",
	Help: "Web Push notifications accepted by push services.",
})
