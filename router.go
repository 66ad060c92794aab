package jsonrpc

import (
	"context"
	"fmt"
)

// Router is an Exchanger that dispatches to different handlers based on the
// JSON-RPC method name.
//
// A Router is immutable once constructed: NewRouter builds the method table
// from the supplied options and nothing may be added to, or removed from,
// a Router afterward. This makes a *Router safe to share across any number
// of concurrently-handled requests without further synchronization.
type Router struct {
	// version identifies this router's API version for the purpose of
	// metrics labeling. It is set via WithVersion and is otherwise empty.
	version string

	routes  map[string]Handler
	metrics MetricsSink
}

// NewRouter returns a new router containing the given routes.
func NewRouter(options ...RouterOption) *Router {
	router := &Router{
		metrics: noopMetricsSink{},
	}

	for _, opt := range options {
		opt(router)
	}

	return router
}

// WithVersion is a RouterOption that sets the version tag attached to this
// router's metric labels.
func WithVersion(version string) RouterOption {
	return func(r *Router) {
		r.version = version
	}
}

// WithMetricsSink is a RouterOption that directs method-call counts to sink
// instead of the default no-op sink.
func WithMetricsSink(sink MetricsSink) RouterOption {
	return func(r *Router) {
		if sink != nil {
			r.metrics = sink
		}
	}
}

// Call handles a call request and returns the response.
//
// It invokes the handler associated with the method specified by the
// request. If no such method has been registered it returns a JSON-RPC
// "method not found" error response, without incrementing either metric
// counter, per the rule that unknown methods are not counted.
//
// A panic raised by the handler is recovered and reported as an
// InternalError response; it is never propagated to the caller, and it
// never affects the processing of any other request or batch element.
func (r *Router) Call(ctx context.Context, req Request) (res Response) {
	h, ok := r.routes[req.Method]
	if !ok {
		return NewErrorResponse(
			req.ID,
			MethodNotFound(),
		)
	}

	r.metrics.IncMethodCalls(req.Method, r.version)

	result, err := r.invoke(ctx, h, req)
	if err != nil {
		r.metrics.IncMethodCallFailures(req.Method, r.version)
		return NewErrorResponse(req.ID, err)
	}

	return NewSuccessResponse(req.ID, result)
}

// Notify handles a notification request.
//
// It invokes the handler associated with the method specified by the
// request. If no such method has been registered it does nothing. As with
// Call, a panic raised by the handler is recovered; since a notification
// produces no response the recovered error is simply discarded.
func (r *Router) Notify(ctx context.Context, req Request) {
	h, ok := r.routes[req.Method]
	if !ok {
		return
	}

	r.metrics.IncMethodCalls(req.Method, r.version)

	if _, err := r.invoke(ctx, h, req); err != nil {
		r.metrics.IncMethodCallFailures(req.Method, r.version)
	}
}

// HasRoute returns true if the router has a route for the given method.
func (r *Router) HasRoute(method string) bool {
	_, ok := r.routes[method]
	return ok
}

// invoke calls h, converting any recovered panic into an InternalError.
//
// The cause of the panic is retained on the resulting Error (see
// withHiddenCause) so that an ExchangeLogger can report it, without it ever
// reaching the client: the client only ever sees the generic "Internal
// error" message, per the panic isolation requirement.
func (r *Router) invoke(ctx context.Context, h Handler, req Request) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = NewErrorWithReservedCode(
				InternalErrorCode,
				withHiddenCause(fmt.Errorf("panic in handler for method '%s': %v", req.Method, p)),
			)
		}
	}()

	return h(ctx, req)
}
