// Package metrics holds the prometheus counters for votes, submissions and throttling.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry    *prometheus.Registry
	votes       *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	submissions *prometheus.CounterVec
}

// New registers the counters on a fresh registry, alongside the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "murphy_votes_total",
			Help: "Vote ledger operations by transition",
		}, []string{"transition"}),
		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "murphy_rate_limited_total",
			Help: "Requests rejected by the rate limiter by action",
		}, []string{"action"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "murphy_submissions_total",
			Help: "Law submissions by result",
		}, []string{"result"}),
	}
}

// Nil receivers are no-ops so handlers work without metrics.

func (m *Metrics) Vote(transition string) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(transition).Inc()
}

func (m *Metrics) RateLimited(action string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(action).Inc()
}

func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}
