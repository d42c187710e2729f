// Package metrics records pipeline measurements with Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// Namespace prefixes every metric name.
const Namespace = "polidigest"

// Recorder exposes pipeline counters and histograms.
type Recorder struct {
	llmCalls      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	analyses      *prometheus.CounterVec
	score         prometheus.Histogram
}

// New registers the pipeline metrics with reg.
// A nil reg uses the default Prometheus registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		llmCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "llm_calls_total",
				Help:      "Total number of summarisation calls by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"stage"},
		),
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "analyses_total",
				Help:      "Total number of analyses by outcome",
			},
			[]string{"outcome"},
		),
		score: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "compliance_score",
				Help:      "Distribution of compliance scores",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}
}

// LLMCall counts one summarisation call.
func (r *Recorder) LLMCall(stage, outcome string) {
	r.llmCalls.WithLabelValues(stage, outcome).Inc()
}

// StageDuration observes the duration of a pipeline stage.
func (r *Recorder) StageDuration(stage string, seconds float64) {
	r.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// Analysis counts one analysis. The score is observed only for successful runs.
func (r *Recorder) Analysis(outcome string, score int) {
	r.analyses.WithLabelValues(outcome).Inc()
	if outcome == driven.OutcomeOK {
		r.score.Observe(float64(score))
	}
}

// Noop discards every measurement.
type Noop struct{}

// Ensure Noop implements the interface.
var _ driven.MetricsRecorder = Noop{}

// LLMCall does nothing.
func (Noop) LLMCall(string, string) {}

// StageDuration does nothing.
func (Noop) StageDuration(string, float64) {}

// Analysis does nothing.
func (Noop) Analysis(string, int) {}
