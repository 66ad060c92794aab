package otelrpc

import (
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/relayrpc/jsonrpc"
)

// commonAttributes returns the OpenTelemetry attributes recorded on every
// span produced by this package.
func commonAttributes(serviceName string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.RPCSystemKey.String("relayrpc/jsonrpc"),
	}

	if serviceName != "" {
		attrs = append(attrs, semconv.RPCServiceKey.String(serviceName))
	}

	return attrs
}

// requestAttributes returns the OpenTelemetry attributes recorded for req.
func requestAttributes(req jsonrpc.Request) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.RPCMethodKey.String(req.Method),
		semconv.RPCJsonrpcVersionKey.String(req.Version),
	}
}

// errorResponseAttributes returns the OpenTelemetry attributes recorded for
// res.
func errorResponseAttributes(res jsonrpc.ErrorResponse) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.RPCJsonrpcErrorCodeKey.Int(int(res.Error.Code)),
		semconv.RPCJsonrpcErrorMessageKey.String(res.Error.Message),
	}
}
