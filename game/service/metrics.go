package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	// stepTotal counts processed input ticks by operation
	stepTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "decodoku_steps_total",
		Help: "Processed input ticks by operation",
	}, []string{"op"})

	stepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "decodoku_step_duration_seconds",
		Help:    "Time spent processing one input tick",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})

	movesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "decodoku_moves_total",
		Help: "Charge moves applied to lattices",
	})

	episodesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "decodoku_episodes_total",
		Help: "Episodes generated, including the first of each session",
	})

	// outcomesTotal counts resolved episodes
	// Labels: "won", "lost"
	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "decodoku_outcomes_total",
		Help: "Resolved episodes by outcome",
	}, []string{"outcome"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "decodoku_active_sessions",
		Help: "Sessions currently held by the service",
	})

	decoderErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "decodoku_decoder_errors_total",
		Help: "Decoder evaluations that returned an error",
	})
)

var (
	tracerOnce    sync.Once
	serviceTracer trace.Tracer
)

// getTracer returns the service tracer; it is a no-op until the host
// installs a provider.
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		serviceTracer = otel.Tracer("github.com/wricardo/decodoku/game/service")
	})
	return serviceTracer
}
