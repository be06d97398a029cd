package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector the server exposes.
var Registry = prometheus.NewRegistry()

var (
	jigokuGamesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jigoku_games_created_total",
			Help: "Number of games created.",
		},
	)
	jigokuGamesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jigoku_games_active",
			Help: "Number of games currently hosted.",
		},
	)
	jigokuGamePanicsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jigoku_game_panics_total",
			Help: "Number of games faulted by a panic inside the rules engine.",
		},
	)

	jigokuPromptResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jigoku_prompt_responses_total",
			Help: "Number of prompt responses by result.",
		},
		[]string{"result"},
	)
	jigokuEventsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jigoku_events_recorded_total",
			Help: "Number of event records journaled by event name.",
		},
		[]string{"event", "cancelled"},
	)
	jigokuJournalErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jigoku_journal_errors_total",
			Help: "Number of failed journal writes.",
		},
	)

	jigokuGatewayConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jigoku_gateway_connections",
			Help: "Number of open websocket connections.",
		},
	)

	jigokuCommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jigoku_command_duration_seconds",
			Help:    "Time taken to run a command against a game, pipeline drain included.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		jigokuGamesCreatedTotal,
		jigokuGamesActive,
		jigokuGamePanicsTotal,
		jigokuPromptResponsesTotal,
		jigokuEventsRecordedTotal,
		jigokuJournalErrorsTotal,
		jigokuGatewayConnections,
		jigokuCommandDuration,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// GameCreated counts a new game.
func GameCreated() {
	jigokuGamesCreatedTotal.Inc()
	jigokuGamesActive.Inc()
}

// GameEnded counts a game leaving the host.
func GameEnded() {
	jigokuGamesActive.Dec()
}

// GamePanicked counts a faulted game.
func GamePanicked() {
	jigokuGamePanicsTotal.Inc()
}

// PromptResponse counts a prompt response; result is "accepted" or the
// rejection reason.
func PromptResponse(result string) {
	jigokuPromptResponsesTotal.WithLabelValues(result).Inc()
}

// EventRecorded counts one journaled event record.
func EventRecorded(name string, cancelled bool) {
	label := "false"
	if cancelled {
		label = "true"
	}
	jigokuEventsRecordedTotal.WithLabelValues(name, label).Inc()
}

// JournalError counts a failed journal write.
func JournalError() {
	jigokuJournalErrorsTotal.Inc()
}

// ConnectionOpened tracks a new websocket connection.
func ConnectionOpened() {
	jigokuGatewayConnections.Inc()
}

// ConnectionClosed tracks a closed websocket connection.
func ConnectionClosed() {
	jigokuGatewayConnections.Dec()
}

// ObserveCommand records how long command took since start.
func ObserveCommand(command string, start time.Time) {
	jigokuCommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}
