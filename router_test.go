package jsonrpc_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/relayrpc/jsonrpc"
)

// metricsSinkStub records every increment it receives for assertion.
type metricsSinkStub struct {
	calls    []string
	failures []string
}

func (s *metricsSinkStub) IncMethodCalls(method, version string) {
	s.calls = append(s.calls, method+"@"+version)
}

func (s *metricsSinkStub) IncMethodCallFailures(method, version string) {
	s.failures = append(s.failures, method+"@"+version)
}

var _ = Describe("type Router", func() {
	var sink *metricsSinkStub

	BeforeEach(func() {
		sink = &metricsSinkStub{}
	})

	Describe("func Call()", func() {
		It("dispatches to the registered handler and returns its result", func() {
			r := NewRouter(
				WithUntypedRoute("<method>", func(_ context.Context, req Request) (any, error) {
					return "<result>", nil
				}),
			)

			res := r.Call(context.Background(), Request{
				Version: "2.0",
				ID:      json.RawMessage(`1`),
				Method:  "<method>",
			})

			Expect(res).To(Equal(SuccessResponse{
				Version:   "2.0",
				RequestID: json.RawMessage(`1`),
				Result:    json.RawMessage(`"<result>"`),
			}))
		})

		It("returns a method-not-found error for an unregistered method", func() {
			r := NewRouter(WithMetricsSink(sink))

			res := r.Call(context.Background(), Request{
				Version: "2.0",
				ID:      json.RawMessage(`1`),
				Method:  "<missing>",
			})

			errRes, ok := res.(ErrorResponse)
			Expect(ok).To(BeTrue())
			Expect(errRes.Error.Code).To(Equal(MethodNotFoundCode))

			Expect(sink.calls).To(BeEmpty())
			Expect(sink.failures).To(BeEmpty())
		})

		It("recovers a panicking handler as an internal error", func() {
			r := NewRouter(
				WithMetricsSink(sink),
				WithUntypedRoute("<method>", func(_ context.Context, req Request) (any, error) {
					panic("boom")
				}),
			)

			res := r.Call(context.Background(), Request{
				Version: "2.0",
				ID:      json.RawMessage(`1`),
				Method:  "<method>",
			})

			errRes, ok := res.(ErrorResponse)
			Expect(ok).To(BeTrue())
			Expect(errRes.Error.Code).To(Equal(InternalErrorCode))
			Expect(sink.failures).To(ConsistOf("<method>@"))
		})

		It("increments the call counter but not the failure counter on success", func() {
			r := NewRouter(
				WithVersion("v1"),
				WithMetricsSink(sink),
				WithUntypedRoute("<method>", func(_ context.Context, req Request) (any, error) {
					return nil, nil
				}),
			)

			r.Call(context.Background(), Request{
				Version: "2.0",
				ID:      json.RawMessage(`1`),
				Method:  "<method>",
			})

			Expect(sink.calls).To(ConsistOf("<method>@v1"))
			Expect(sink.failures).To(BeEmpty())
		})

		It("increments both counters when the handler returns an error", func() {
			r := NewRouter(
				WithVersion("v1"),
				WithMetricsSink(sink),
				WithUntypedRoute("<method>", func(_ context.Context, req Request) (any, error) {
					return nil, errors.New("<error>")
				}),
			)

			r.Call(context.Background(), Request{
				Version: "2.0",
				ID:      json.RawMessage(`1`),
				Method:  "<method>",
			})

			Expect(sink.calls).To(ConsistOf("<method>@v1"))
			Expect(sink.failures).To(ConsistOf("<method>@v1"))
		})
	})

	Describe("func Notify()", func() {
		It("dispatches to the registered handler and produces no response", func() {
			called := false

			r := NewRouter(
				WithUntypedRoute("<method>", func(_ context.Context, req Request) (any, error) {
					called = true
					return nil, nil
				}),
			)

			r.Notify(context.Background(), Request{
				Version: "2.0",
				Method:  "<method>",
			})

			Expect(called).To(BeTrue())
		})

		It("does nothing for an unregistered method", func() {
			r := NewRouter(WithMetricsSink(sink))

			Expect(func() {
				r.Notify(context.Background(), Request{
					Version: "2.0",
					Method:  "<missing>",
				})
			}).NotTo(Panic())

			Expect(sink.calls).To(BeEmpty())
		})

		It("recovers a panicking handler without propagating it", func() {
			r := NewRouter(
				WithMetricsSink(sink),
				WithUntypedRoute("<method>", func(_ context.Context, req Request) (any, error) {
					panic("boom")
				}),
			)

			Expect(func() {
				r.Notify(context.Background(), Request{
					Version: "2.0",
					Method:  "<method>",
				})
			}).NotTo(Panic())

			Expect(sink.failures).To(ConsistOf("<method>@"))
		})
	})

	Describe("func HasRoute()", func() {
		It("returns true for a registered method", func() {
			r := NewRouter(
				WithUntypedRoute("<method>", func(_ context.Context, req Request) (any, error) {
					return nil, nil
				}),
			)

			Expect(r.HasRoute("<method>")).To(BeTrue())
		})

		It("returns false for an unregistered method", func() {
			r := NewRouter()
			Expect(r.HasRoute("<method>")).To(BeFalse())
		})
	})

	Describe("func NewRouter()", func() {
		It("panics when the same method is registered twice", func() {
			Expect(func() {
				NewRouter(
					WithUntypedRoute("<method>", func(_ context.Context, req Request) (any, error) {
						return nil, nil
					}),
					WithUntypedRoute("<method>", func(_ context.Context, req Request) (any, error) {
						return nil, nil
					}),
				)
			}).To(PanicWith("duplicate route for '<method>' method"))
		})
	})
})
