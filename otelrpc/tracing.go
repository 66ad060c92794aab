// Package otelrpc provides OpenTelemetry tracing for a jsonrpc.Exchanger,
// following the RPC semantic conventions described at
// https://github.com/open-telemetry/opentelemetry-specification/blob/main/specification/trace/semantic_conventions/rpc.md.
package otelrpc

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/relayrpc/jsonrpc"
	"github.com/relayrpc/jsonrpc/internal/version"
)

// Tracing is an implementation of jsonrpc.Exchanger that decorates Next with
// OpenTelemetry tracing for each JSON-RPC request.
type Tracing struct {
	// Next is the next exchanger in the middleware stack.
	Next jsonrpc.Exchanger

	// TracerProvider is the OpenTelemetry TracerProvider used to create
	// spans.
	TracerProvider trace.TracerProvider

	// ServiceName is an application-specific service name used in the span
	// name and attributes. It may be empty.
	ServiceName string

	// CreateNewSpan controls whether a new span is created for each
	// request, or JSON-RPC attributes are added to an existing span.
	//
	// By default it is assumed that the transport layer is responsible for
	// creating the span, and no new span is created.
	CreateNewSpan bool

	once           sync.Once
	tracer         trace.Tracer
	spanNamePrefix string
	attributes     []attribute.KeyValue
}

var _ jsonrpc.Exchanger = (*Tracing)(nil)

// Call handles a call request and returns the response.
func (t *Tracing) Call(ctx context.Context, req jsonrpc.Request) jsonrpc.Response {
	var res jsonrpc.Response

	t.withSpan(ctx, req, func(ctx context.Context, span trace.Span) {
		res = t.Next.Call(ctx, req)

		if e, ok := res.(jsonrpc.ErrorResponse); ok {
			span.SetAttributes(errorResponseAttributes(e)...)

			if e.ServerError == nil {
				span.SetStatus(codes.Error, e.Error.Message)
			} else {
				span.SetStatus(codes.Error, e.ServerError.Error())
				span.RecordError(e.ServerError)
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	})

	return res
}

// Notify handles a notification request.
func (t *Tracing) Notify(ctx context.Context, req jsonrpc.Request) {
	t.withSpan(ctx, req, func(_ context.Context, span trace.Span) {
		t.Next.Notify(ctx, req)
		span.SetStatus(codes.Ok, "")
	})
}

// withSpan invokes fn with the span to use for req.
func (t *Tracing) withSpan(
	ctx context.Context,
	req jsonrpc.Request,
	fn func(context.Context, trace.Span),
) {
	t.init()

	name := t.spanNamePrefix + sanitizeMethodName(req.Method)
	var span trace.Span

	if t.CreateNewSpan {
		ctx, span = t.tracer.Start(
			ctx,
			name,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()
	} else {
		span = trace.SpanFromContext(ctx)
		span.SetName(name)
	}

	span.SetAttributes(t.attributes...)
	span.SetAttributes(requestAttributes(req)...)

	if !req.IsNotification() {
		span.SetAttributes(
			semconv.RPCJsonrpcRequestIDKey.String(sanitizeRequestID(req)),
		)
	}

	fn(ctx, span)
}

// init initializes the tracer if it has not already been initialized.
func (t *Tracing) init() {
	t.once.Do(func() {
		t.tracer = t.TracerProvider.Tracer(
			"github.com/relayrpc/jsonrpc/otelrpc",
			trace.WithInstrumentationVersion(version.Version),
		)

		t.attributes = commonAttributes(t.ServiceName)

		if t.ServiceName != "" {
			t.spanNamePrefix = t.ServiceName + "/"
		}
	})
}

// sanitizeRequestID returns a request ID suitable for use as a span
// attribute; it returns an empty string if the request ID is null.
func sanitizeRequestID(req jsonrpc.Request) string {
	id := string(req.ID)

	if strings.EqualFold(id, "null") {
		return ""
	}

	return strings.Trim(id, `"`)
}

// sanitizeMethodName returns a method name suitable for use as part of a
// span name, since span names must not contain a slash.
func sanitizeMethodName(n string) string {
	return strings.ReplaceAll(n, "/", "-")
}
