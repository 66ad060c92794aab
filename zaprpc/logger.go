// Package zaprpc provides a jsonrpc.ExchangeLogger backed by
// go.uber.org/zap, for callers that want structured, leveled logging rather
// than the plain-text jsonrpc.DefaultExchangeLogger.
package zaprpc

import (
	"context"
	"fmt"
	"unicode"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/relayrpc/jsonrpc"
)

// ExchangeLogger is an implementation of jsonrpc.ExchangeLogger using
// *zap.Logger.
//
// When the context carries a recording OpenTelemetry span, its trace ID is
// attached to every log entry, so traces produced by jsonrpc/otelrpc can be
// correlated with the corresponding log lines.
type ExchangeLogger struct {
	// Target is the destination for log messages.
	Target *zap.Logger
}

var _ jsonrpc.ExchangeLogger = (*ExchangeLogger)(nil)

// LogError writes information about an error response that is a result of
// some problem with the request set as a whole.
func (l ExchangeLogger) LogError(ctx context.Context, res jsonrpc.ErrorResponse) {
	fields := []zap.Field{
		zap.Int("error_code", int(res.Error.Code)),
		zap.String("error", res.Error.Code.String()),
		traceField(ctx),
	}

	if res.ServerError != nil {
		fields = append(fields, zap.String("caused_by", res.ServerError.Error()))
	}

	if res.Error.Message != res.Error.Code.String() {
		fields = append(fields, zap.String("responded_with", res.Error.Message))
	}

	l.Target.Error("error", fields...)
}

// LogWriterError logs about an error that occurred when attempting to use a
// jsonrpc.ResponseWriter.
func (l ExchangeLogger) LogWriterError(ctx context.Context, err error) {
	l.Target.Error(
		"unable to write JSON-RPC response",
		zap.String("error", err.Error()),
		traceField(ctx),
	)
}

// LogNotification logs information about a notification request.
func (l ExchangeLogger) LogNotification(ctx context.Context, req jsonrpc.Request) {
	l.Target.Info(
		"notify "+formatMethod(req.Method),
		zap.Int("param_size", len(req.Parameters)),
		traceField(ctx),
	)
}

// LogCall logs information about a call request and its response.
func (l ExchangeLogger) LogCall(ctx context.Context, req jsonrpc.Request, res jsonrpc.Response) {
	fields := []zap.Field{
		zap.Int("param_size", len(req.Parameters)),
		traceField(ctx),
	}

	switch res := res.(type) {
	case jsonrpc.SuccessResponse:
		fields = append(fields, zap.Int("result_size", len(res.Result)))
		l.Target.Info("call "+formatMethod(req.Method), fields...)

	case jsonrpc.ErrorResponse:
		fields = append(
			fields,
			zap.Int("error_code", int(res.Error.Code)),
			zap.String("error", res.Error.Code.String()),
		)

		if res.ServerError != nil {
			fields = append(fields, zap.String("caused_by", res.ServerError.Error()))
		}

		if res.Error.Message != res.Error.Code.String() {
			fields = append(fields, zap.String("responded_with", res.Error.Message))
		}

		l.Target.Error("call "+formatMethod(req.Method), fields...)
	}
}

// traceField returns a zap.Field carrying the trace ID of the span recording
// on ctx, or a no-op field if there is none.
func traceField(ctx context.Context) zap.Field {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		return zap.String("trace_id", span.SpanContext().TraceID().String())
	}

	return zap.Skip()
}

// formatMethod formats a JSON-RPC method name for display.
func formatMethod(m string) string {
	if m == "" || !isAlphaNumeric(m) {
		return fmt.Sprintf("%#v", m)
	}

	return m
}

func isAlphaNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}

	return true
}
