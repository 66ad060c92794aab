package jsonrpc_test

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dogmatiq/dodeca/logging"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	. "github.com/relayrpc/jsonrpc"
	. "github.com/relayrpc/jsonrpc/internal/fixtures"
)

var _ = Describe("func Exchange()", func() {
	var (
		requestSet                   RequestSet
		requestA, requestB, requestC Request
		exchanger                    *ExchangerStub
		reader                       *RequestSetReaderStub
		writer                       *ResponseWriterStub
		buffer                       *logging.BufferedLogger
		logger                       DefaultExchangeLogger
		closed                       bool
	)

	BeforeEach(func() {
		requestA = Request{
			Version:    "2.0",
			ID:         json.RawMessage(`123`),
			Method:     "<method-a>",
			Parameters: json.RawMessage(`1`),
		}

		requestB = Request{
			Version:    "2.0",
			ID:         json.RawMessage(`456`),
			Method:     "<method-b>",
			Parameters: json.RawMessage(`22`),
		}

		requestC = Request{
			Version:    "2.0",
			ID:         nil, // notification
			Method:     "<method-c>",
			Parameters: json.RawMessage(`333`),
		}

		exchanger = &ExchangerStub{
			CallFunc: func(_ context.Context, req Request) Response {
				var param int
				if err := json.Unmarshal(req.Parameters, &param); err != nil {
					panic(err)
				}

				result, err := json.Marshal(param * 1000)
				if err != nil {
					panic(err)
				}

				return SuccessResponse{
					Version:   "2.0",
					RequestID: req.ID,
					Result:    result,
				}
			},
		}

		reader = &RequestSetReaderStub{
			ReadFunc: func(context.Context) (RequestSet, error) {
				return requestSet, nil
			},
		}

		closed = false

		writer = &ResponseWriterStub{
			WriteErrorFunc: func(ErrorResponse) error {
				panic("unexpected call to WriteErrorFunc()")
			},
			WriteUnbatchedFunc: func(Response) error {
				panic("unexpected call to WriteUnbatchedFunc()")
			},
			WriteBatchedFunc: func(Response) error {
				panic("unexpected call to WriteBatchedFunc()")
			},
			CloseFunc: func() error {
				Expect(closed).To(BeFalse(), "response writer was closed multiple times")
				closed = true
				return nil
			},
		}

		buffer = &logging.BufferedLogger{}
		logger = DefaultExchangeLogger{Target: buffer}
	})

	AfterEach(func() {
		Expect(closed).To(BeTrue())
	})

	When("the request set is not a batch", func() {
		BeforeEach(func() {
			requestSet = RequestSet{
				Requests: []Request{requestA},
				IsBatch:  false,
			}
		})

		It("passes the request to the exchanger and writes an unbatched response", func() {
			writer.WriteUnbatchedFunc = func(res Response) error {
				Expect(res).To(Equal(SuccessResponse{
					Version:   "2.0",
					RequestID: json.RawMessage(`123`),
					Result:    json.RawMessage(`1000`),
				}))

				return errors.New("<error>")
			}

			err := Exchange(context.Background(), exchanger, reader, writer, logger)

			Expect(err).To(MatchError("<error>"))
		})

		When("the request is a notification", func() {
			BeforeEach(func() {
				requestSet.Requests = []Request{requestC}
			})

			It("does not write any response", func() {
				called := false
				exchanger.NotifyFunc = func(_ context.Context, req Request) {
					Expect(req).To(Equal(requestC))
					called = true
				}

				err := Exchange(context.Background(), exchanger, reader, writer, logger)

				Expect(err).ShouldNot(HaveOccurred())
				Expect(called).To(BeTrue())
			})
		})
	})

	When("the request set is a batch", func() {
		BeforeEach(func() {
			requestSet.IsBatch = true
		})

		When("the batch contains a single request", func() {
			BeforeEach(func() {
				requestSet.Requests = []Request{requestA}
			})

			It("writes a batched response", func() {
				writer.WriteBatchedFunc = func(res Response) error {
					Expect(res).To(Equal(SuccessResponse{
						Version:   "2.0",
						RequestID: requestA.ID,
						Result:    json.RawMessage(`1000`),
					}))
					return nil
				}

				err := Exchange(context.Background(), exchanger, reader, writer, logger)
				Expect(err).ShouldNot(HaveOccurred())
			})
		})

		When("the batch contains multiple requests", func() {
			BeforeEach(func() {
				requestSet.Requests = []Request{requestA, requestB, requestC}
			})

			It("writes a batched response for each call, in source order, skipping notifications", func() {
				var responses []Response

				writer.WriteBatchedFunc = func(res Response) error {
					responses = append(responses, res)
					return nil
				}

				err := Exchange(context.Background(), exchanger, reader, writer, logger)

				Expect(err).ShouldNot(HaveOccurred())
				Expect(responses).To(Equal([]Response{
					SuccessResponse{
						Version:   "2.0",
						RequestID: json.RawMessage(`123`),
						Result:    json.RawMessage(`1000`),
					},
					SuccessResponse{
						Version:   "2.0",
						RequestID: json.RawMessage(`456`),
						Result:    json.RawMessage(`22000`),
					},
				}))
			})

			When("the response writer returns an error", func() {
				It("stops dispatching and returns the error", func() {
					var calls []Request

					exchanger.CallFunc = func(_ context.Context, req Request) Response {
						calls = append(calls, req)
						return SuccessResponse{}
					}

					writer.WriteBatchedFunc = func(Response) error {
						return errors.New("<error>")
					}

					err := Exchange(context.Background(), exchanger, reader, writer, logger)

					Expect(err).To(MatchError("<error>"))
					// Only the first request (requestA) should have been
					// dispatched; requestB and the requestC notification
					// never run because the first write already failed.
					Expect(calls).To(ConsistOf(requestA))
				})
			})
		})
	})

	When("there is a problem with the request set", func() {
		DescribeTable(
			"it writes an error response",
			func(
				fn func() (RequestSet, error),
				expectErrInfo ErrorInfo,
				expectErr string,
			) {
				reader.ReadFunc = func(context.Context) (RequestSet, error) {
					return fn()
				}

				writer.WriteErrorFunc = func(res ErrorResponse) error {
					Expect(res.Version).To(Equal("2.0"))
					Expect(res.RequestID).To(BeNil())
					Expect(res.Error).To(Equal(expectErrInfo))

					// An IO error is both returned by Exchange() and retained
					// as the response's server-side cause; the other cases
					// carry no cause.
					if expectErr == "" {
						Expect(res.ServerError).To(BeNil())
					} else {
						Expect(res.ServerError).To(MatchError(expectErr))
					}

					return nil
				}

				err := Exchange(context.Background(), exchanger, reader, writer, logger)

				if expectErr == "" {
					Expect(err).ShouldNot(HaveOccurred())
				} else {
					Expect(err).To(MatchError(expectErr))
				}
			},
			Entry(
				"IO error when reading the request set",
				func() (RequestSet, error) {
					return RequestSet{}, errors.New("<error>")
				},
				ErrorInfo{
					Code:    InternalErrorCode,
					Message: "unable to read JSON-RPC request",
				},
				"<error>",
			),
			Entry(
				"native JSON-RPC error when reading the request set",
				func() (RequestSet, error) {
					return RequestSet{}, NewErrorWithReservedCode(InvalidRequestCode)
				},
				ErrorInfo{
					Code:    InvalidRequestCode,
					Message: InvalidRequestCode.String(),
				},
				"", // Exchange() should not return the error
			),
			Entry(
				"invalid request set",
				func() (RequestSet, error) {
					return RequestSet{}, nil
				},
				ErrorInfo{
					Code:    InvalidRequestCode,
					Message: "non-batch request sets must contain exactly one request",
				},
				"", // Exchange() should not return the error
			),
		)
	})
})
