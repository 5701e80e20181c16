package application

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ericfisherdev/oncoassist/internal/domain/model"
)

// Outcome labels recorded for each submission.
const (
	OutcomeSuccess   = "success"
	OutcomeSkipped   = "skipped"
	OutcomeAPIError  = "api_error"
	OutcomeMalformed = "malformed"
	OutcomeTransport = "transport_error"
)

// Metrics records submission counts and upstream latency. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	submissions *prometheus.CounterVec
	latency     prometheus.Histogram
	inFlight    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oncoassist",
			Name:      "submissions_total",
			Help:      "Question submissions by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "oncoassist",
			Name:      "upstream_duration_seconds",
			Help:      "Time spent waiting on the chat completion endpoint.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oncoassist",
			Name:      "submissions_in_flight",
			Help:      "Submissions currently waiting on the upstream endpoint.",
		}),
	}

	for _, c := range []prometheus.Collector{m.submissions, m.latency, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) skipped() {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(OutcomeSkipped).Inc()
}

func (m *Metrics) started() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) finished(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.latency.Observe(d.Seconds())
	m.submissions.WithLabelValues(classify(err)).Inc()
}

// classify maps a submission error onto an outcome label.
func classify(err error) string {
	var uf model.UserFacing
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, model.ErrMalformedResponse):
		return OutcomeMalformed
	case errors.As(err, &uf):
		return OutcomeAPIError
	default:
		return OutcomeTransport
	}
}

// Submissions exposes the outcome counter for inspection in tests and
// debug handlers.
func (m *Metrics) Submissions() *prometheus.CounterVec {
	return m.submissions
}
