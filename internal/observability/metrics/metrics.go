package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for the intake and relay handlers.
type PipelineMetrics struct {
	requestsTotal   *prometheus.CounterVec
	stepsTotal      *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests handled, by handler and response status",
		}, []string{"handler", "status"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadrelay",
			Subsystem: "pipeline",
			Name:      "steps_total",
			Help:      "Side-effect outcomes, by step (persist, admin_email, user_email, conversion) and outcome",
		}, []string{"step", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadrelay",
			Subsystem: "pipeline",
			Name:      "step_latency_seconds",
			Help:      "Latency of external calls made by a pipeline step",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.stepsTotal, m.upstreamLatency)
	return m
}

func (m *PipelineMetrics) ObserveRequest(handler string, status int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(handler, statusClass(status)).Inc()
}

func (m *PipelineMetrics) ObserveStep(step, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.stepsTotal.WithLabelValues(step, outcome).Inc()
	if outcome != "skipped" {
		m.upstreamLatency.WithLabelValues(step).Observe(seconds)
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 200 && status < 300:
		return "2xx"
	default:
		return "other"
	}
}
