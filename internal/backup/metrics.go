package backup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var backupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streek_backups_total",
	Help: "Database backups by result.",
}, []string{"result"})
