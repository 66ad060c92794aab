package zaprpc_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/relayrpc/jsonrpc"
	"github.com/relayrpc/jsonrpc/zaprpc"
)

type stubIDGenerator struct {
	traceID oteltrace.TraceID
}

func (g *stubIDGenerator) NewIDs(context.Context) (oteltrace.TraceID, oteltrace.SpanID) {
	return g.traceID, [8]byte{}
}

func (g *stubIDGenerator) NewSpanID(context.Context, oteltrace.TraceID) oteltrace.SpanID {
	return [8]byte{}
}

var _ = Context("type ExchangeLogger", func() {
	var (
		ctx         context.Context
		request     jsonrpc.Request
		success     jsonrpc.SuccessResponse
		nativeError jsonrpc.ErrorResponse
		buffer      bytes.Buffer
		logger      zaprpc.ExchangeLogger
		tracer      oteltrace.Tracer
		traceID     oteltrace.TraceID
	)

	BeforeEach(func() {
		ctx = context.Background()

		exporter, err := stdouttrace.New()
		Expect(err).NotTo(HaveOccurred())

		traceID, err = oteltrace.TraceIDFromHex("01020304050607080102040810203040")
		Expect(err).NotTo(HaveOccurred())

		tracer = trace.NewTracerProvider(
			trace.WithIDGenerator(&stubIDGenerator{traceID: traceID}),
			trace.WithBatcher(exporter),
		).Tracer("<tracer>")

		request = jsonrpc.Request{
			Version:    "2.0",
			ID:         json.RawMessage(`123`),
			Method:     "method",
			Parameters: json.RawMessage(`[1, 2, 3]`),
		}

		success = jsonrpc.NewSuccessResponse(request.ID, 123).(jsonrpc.SuccessResponse)
		nativeError = jsonrpc.NewErrorResponse(request.ID, jsonrpc.MethodNotFound())

		buffer.Reset()

		logger = zaprpc.ExchangeLogger{
			Target: zap.New(
				zapcore.NewCore(
					zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
					zapcore.AddSync(&buffer),
					zapcore.DebugLevel,
				),
			),
		}
	})

	Describe("func LogError()", func() {
		It("attaches the trace ID of a recording span", func() {
			ctx, span := tracer.Start(ctx, "<span>")
			defer span.End()

			logger.LogError(ctx, nativeError)

			Expect(buffer.String()).To(
				ContainSubstring(
					fmt.Sprintf(`"trace_id": "%s"`, "01020304050607080102040810203040"),
				),
			)
		})

		It("omits the trace ID when there is no recording span", func() {
			logger.LogError(ctx, nativeError)

			Expect(buffer.String()).NotTo(ContainSubstring("trace_id"))
		})
	})

	Describe("func LogCall()", func() {
		It("logs a successful call at info level", func() {
			logger.LogCall(ctx, request, success)

			Expect(buffer.String()).To(ContainSubstring(`INFO`))
			Expect(buffer.String()).To(ContainSubstring(`call method`))
			Expect(buffer.String()).To(ContainSubstring(`"result_size": 3`))
		})

		It("logs a failed call at error level", func() {
			logger.LogCall(ctx, request, nativeError)

			Expect(buffer.String()).To(ContainSubstring(`ERROR`))
			Expect(buffer.String()).To(ContainSubstring(`"error_code": -32601`))
		})

		It("quotes method names that contain non-printable characters", func() {
			request.Method = "<the method>\x00"
			logger.LogCall(ctx, request, success)

			Expect(buffer.String()).To(ContainSubstring(`"<the method>\x00"`))
		})
	})

	Describe("func LogWriterError()", func() {
		It("logs the error", func() {
			logger.LogWriterError(ctx, errors.New("<error>"))

			Expect(buffer.String()).To(ContainSubstring(`"error": "<error>"`))
		})
	})
})
