package agent

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics captures orchestrator counters. A nil *Metrics records nothing.
type Metrics struct {
	modelTurns *prometheus.CounterVec
	commits    *prometheus.CounterVec
	latency    prometheus.Histogram
	completed  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		modelTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "convoform",
			Name:      "model_turns_total",
			Help:      "Model calls made by the orchestrator.",
		}, []string{"tools"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "convoform",
			Name:      "field_commits_total",
			Help:      "Field commit attempts by result.",
		}, []string{"result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "convoform",
			Name:      "advance_duration_seconds",
			Help:      "Duration of one advance call.",
			Buckets:   prometheus.DefBuckets,
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "convoform",
			Name:      "threads_completed_total",
			Help:      "Threads that reached the terminal state.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.modelTurns, m.commits, m.latency, m.completed)
	}
	return m
}

func (m *Metrics) ObserveModelTurn(toolsEnabled bool) {
	if m == nil {
		return
	}
	label := "disabled"
	if toolsEnabled {
		label = "enabled"
	}
	m.modelTurns.WithLabelValues(label).Inc()
}

func (m *Metrics) ObserveCommit(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.commits.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAdvance(d time.Duration) {
	if m == nil {
		return
	}
	m.latency.Observe(d.Seconds())
}

func (m *Metrics) ObserveCompleted() {
	if m == nil {
		return
	}
	m.completed.Inc()
}
