package jsonrpc

// MetricsSink receives counts of method dispatches performed by a Router.
//
// Implementations are typically provided by the promrpc sub-package, backed
// by github.com/prometheus/client_golang, but any implementation satisfying
// this interface may be supplied; the core dispatcher never depends on a
// concrete metrics backend.
type MetricsSink interface {
	// IncMethodCalls increments the total number of times method was
	// dispatched under the given version tag, regardless of outcome.
	IncMethodCalls(method, version string)

	// IncMethodCallFailures increments the total number of times a dispatch
	// of method under the given version tag produced an error response,
	// including one produced by a recovered panic.
	IncMethodCallFailures(method, version string)
}

// noopMetricsSink is the MetricsSink used by a Router that was not given one
// explicitly.
type noopMetricsSink struct{}

func (noopMetricsSink) IncMethodCalls(string, string)        {}
func (noopMetricsSink) IncMethodCallFailures(string, string) {}
