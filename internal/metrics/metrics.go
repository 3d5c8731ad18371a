// Package metrics exposes Prometheus instrumentation for the event hub,
// the log mutation engine and the reminder service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daykeep_events_published_total",
			Help: "Events handed to the hub, by event type.",
		},
		[]string{"type"},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daykeep_events_dropped_total",
			Help: "Events discarded because a subscriber queue was full.",
		},
	)

	EventSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daykeep_event_subscribers",
			Help: "Currently connected event stream subscribers.",
		},
	)

	LogMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daykeep_task_log_mutations_total",
			Help: "Task log writes, moves and deletions.",
		},
		[]string{"op"},
	)

	StreakSyncs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daykeep_streak_syncs_total",
			Help: "Streak log updates driven by linked task changes.",
		},
	)

	RemindersSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daykeep_reminders_sent_total",
			Help: "Streak reminder events published.",
		},
	)
)

// Handler adapts the Prometheus scrape handler to fasthttp.
func Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
}
