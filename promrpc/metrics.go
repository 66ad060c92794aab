// Package promrpc provides a jsonrpc.MetricsSink implementation backed by
// github.com/prometheus/client_golang.
package promrpc

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/relayrpc/jsonrpc"
)

// MetricsSink is an implementation of jsonrpc.MetricsSink that records
// rpc_method_calls_total and rpc_method_calls_failed_total counters,
// each labeled by method and version.
type MetricsSink struct {
	calls  *prometheus.CounterVec
	failed *prometheus.CounterVec
}

var _ jsonrpc.MetricsSink = (*MetricsSink)(nil)

// NewMetricsSink returns a MetricsSink that registers its counters with reg.
//
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	s := &MetricsSink{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpc_method_calls_total",
				Help: "The total number of JSON-RPC methods dispatched.",
			},
			[]string{"method", "version"},
		),
		failed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpc_method_calls_failed_total",
				Help: "The total number of JSON-RPC methods that returned an error.",
			},
			[]string{"method", "version"},
		),
	}

	reg.MustRegister(s.calls, s.failed)

	return s
}

// IncMethodCalls increments the call counter for method/version.
func (s *MetricsSink) IncMethodCalls(method, version string) {
	s.calls.WithLabelValues(method, version).Inc()
}

// IncMethodCallFailures increments the failure counter for method/version.
func (s *MetricsSink) IncMethodCallFailures(method, version string) {
	s.failed.WithLabelValues(method, version).Inc()
}
