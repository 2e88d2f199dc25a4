package client

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce   sync.Once
	sharedMetrics *clientMetrics
)

type clientMetrics struct {
	pending   prometheus.Gauge
	requests  *prometheus.CounterVec
	unmatched prometheus.Counter
	duration  *prometheus.HistogramVec
}

func newClientMetrics() *clientMetrics {
	metricsOnce.Do(func() {
		m := &clientMetrics{
			pending: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "sethrpc_validator_pending_requests",
				Help: "Requests awaiting a validator reply.",
			}),
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "sethrpc_validator_requests_total",
				Help: "Validator requests by message type and outcome.",
			}, []string{"type", "result"}),
			unmatched: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "sethrpc_validator_unmatched_replies_total",
				Help: "Inbound envelopes discarded for lack of a waiting request.",
			}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "sethrpc_validator_request_duration_seconds",
				Help:    "Round trip time of validator requests.",
				Buckets: prometheus.DefBuckets,
			}, []string{"type"}),
		}
		prometheus.MustRegister(m.pending, m.requests, m.unmatched, m.duration)
		sharedMetrics = m
	})
	return sharedMetrics
}
