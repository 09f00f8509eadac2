package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pgchart_source_request_duration_seconds",
			Help: "Duration of data source requests.",
		},
		[]string{"source", "kind"},
	)

	SourceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pgchart_source_errors_total",
		Help: "The total number of failed data source requests.",
	}, []string{"source", "kind"})

	TicksStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pgchart_ticks_stored_total",
		Help: "The total number of ticks inserted into the store.",
	})

	FeedConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pgchart_feed_connected",
		Help: "1 while the live quote feed is connected.",
	})

	Refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pgchart_view_refreshes_total",
		Help: "View refreshes by mode and outcome.",
	}, []string{"mode", "result"})

	SwingAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pgchart_swing_alerts_total",
		Help: "The total number of price swing alerts sent.",
	})
)
