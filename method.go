package jsonrpc

import (
	"bytes"
	"context"

	"github.com/relayrpc/jsonrpc/internal/jsonx"
)

// Handler is a function that produces a result value (or error) in response
// to a JSON-RPC request for a specific method.
//
// It is the uniform, "untyped" contract that every method shape in this file
// is adapted down to: given the shared router context and the raw JSON-RPC
// request, produce a JSON-encodable result or an error.
//
// res is the result value to include in the JSON-RPC response; it is not the
// JSON-RPC response itself. If err is non-nil, a JSON-RPC error response is
// sent instead and res is ignored.
//
// If req is a notification (that is, it does not have a request ID) res is
// always ignored.
type Handler func(ctx context.Context, req Request) (res any, err error)

// RouterOption configures a Router constructed by NewRouter.
type RouterOption func(*Router)

// WithUntypedRoute is a RouterOption that adds a route from the method m to
// the "untyped" handler function h.
//
// It underlies every other With*Route constructor in this file; user code
// should prefer one of those instead.
func WithUntypedRoute(m string, h Handler) RouterOption {
	return func(r *Router) {
		if _, ok := r.routes[m]; ok {
			panic("duplicate route for '" + m + "' method")
		}

		if r.routes == nil {
			r.routes = map[string]Handler{}
		}

		r.routes[m] = h
	}
}

// WithRoute is a RouterOption that adds a route from the method m to the
// "typed" handler function h.
//
// P is the type into which the JSON-RPC request parameters are unmarshaled. R
// is the type of the result included in a successful JSON-RPC response.
//
// This is shape 1 of the five method shapes: (context, typed_input) →
// (typed_output, error).
func WithRoute[P, R any](
	m string,
	h func(context.Context, P) (R, error),
	options ...jsonx.UnmarshalOption,
) RouterOption {
	return WithUntypedRoute(m, func(ctx context.Context, req Request) (any, error) {
		var params P
		if err := req.UnmarshalParameters(&params, options...); err != nil {
			return nil, err
		}

		result, err := h(ctx, params)
		if err != nil {
			return nil, AsRPCError(err)
		}

		return result, nil
	})
}

// WithRouteNoContext is a RouterOption for shape 2 of the five method
// shapes: (typed_input) → (typed_output, error). It is otherwise identical
// to WithRoute.
func WithRouteNoContext[P, R any](
	m string,
	h func(P) (R, error),
	options ...jsonx.UnmarshalOption,
) RouterOption {
	return WithRoute(m, func(_ context.Context, p P) (R, error) {
		return h(p)
	}, options...)
}

// WithRouteContextOnly is a RouterOption for shape 3 of the five method
// shapes: (context) → (typed_output, error). The method accepts no
// parameters; a request that supplies any non-empty params value fails with
// InvalidParametersCode.
func WithRouteContextOnly[R any](m string, h func(context.Context) (R, error)) RouterOption {
	return WithUntypedRoute(m, func(ctx context.Context, req Request) (any, error) {
		if err := rejectParameters(req); err != nil {
			return nil, err
		}

		result, err := h(ctx)
		if err != nil {
			return nil, AsRPCError(err)
		}

		return result, nil
	})
}

// WithRouteNoParams is a RouterOption for shape 4 of the five method shapes:
// () → (typed_output, error). The method accepts neither a context nor
// parameters; a request that supplies any non-empty params value fails with
// InvalidParametersCode.
func WithRouteNoParams[R any](m string, h func() (R, error)) RouterOption {
	return WithRouteContextOnly(m, func(context.Context) (R, error) {
		return h()
	})
}

// WithStaticRoute is a RouterOption for shape 5 of the five method shapes:
// () → static_string. It exists for trivial methods such as version
// banners, where the result never depends on the request or router state.
func WithStaticRoute(m string, h func() string) RouterOption {
	return WithRouteNoParams(m, func() (string, error) {
		return h(), nil
	})
}

// NoResult adapts a "typed" handler function that does not return a JSON-RPC
// result value so that it can be used with WithRoute(). The adapted function
// takes a context, so it is not accepted by WithRouteNoContext().
func NoResult[P any](h func(context.Context, P) error) func(context.Context, P) (any, error) {
	return func(ctx context.Context, params P) (any, error) {
		return nil, h(ctx, params)
	}
}

// rejectParameters returns an InvalidParametersCode error if req carries
// non-empty parameters, per the rule that shapes 3, 4 and 5 accept no input.
func rejectParameters(req Request) error {
	if paramsAreEmpty(req.Parameters) {
		return nil
	}

	return InvalidParameters(
		WithMessage("method '%s' does not accept parameters", req.Method),
	)
}

// paramsAreEmpty returns true if raw represents the absence of parameters or
// an empty positional parameter list, per the data model's is_empty
// predicate.
func paramsAreEmpty(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 ||
		string(trimmed) == "null" ||
		string(trimmed) == "[]"
}
