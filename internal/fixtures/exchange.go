package fixtures

import (
	"context"

	"github.com/relayrpc/jsonrpc"
)

// ExchangerStub is a test implementation of the Exchanger interface.
type ExchangerStub struct {
	CallFunc   func(context.Context, jsonrpc.Request) jsonrpc.Response
	NotifyFunc func(context.Context, jsonrpc.Request)
}

// Call handles a call request and returns the response.
func (s *ExchangerStub) Call(ctx context.Context, req jsonrpc.Request) jsonrpc.Response {
	if s.CallFunc != nil {
		return s.CallFunc(ctx, req)
	}

	return nil
}

// Notify handles a notification request.
func (s *ExchangerStub) Notify(ctx context.Context, req jsonrpc.Request) {
	if s.NotifyFunc != nil {
		s.NotifyFunc(ctx, req)
	}
}

// RequestSetReaderStub is a test implementation of the RequestSetReader
// interface.
type RequestSetReaderStub struct {
	ReadFunc func(context.Context) (jsonrpc.RequestSet, error)
}

func (s *RequestSetReaderStub) Read(ctx context.Context) (jsonrpc.RequestSet, error) {
	if s.ReadFunc != nil {
		return s.ReadFunc(ctx)
	}

	return jsonrpc.RequestSet{}, nil
}

// ResponseWriterStub is a test implementation of the ResponseWriter interface.
type ResponseWriterStub struct {
	WriteErrorFunc     func(jsonrpc.ErrorResponse) error
	WriteUnbatchedFunc func(jsonrpc.Response) error
	WriteBatchedFunc   func(jsonrpc.Response) error
	CloseFunc          func() error
}

func (s *ResponseWriterStub) WriteError(res jsonrpc.ErrorResponse) error {
	if s.WriteErrorFunc != nil {
		return s.WriteErrorFunc(res)
	}

	return nil
}

func (s *ResponseWriterStub) WriteUnbatched(res jsonrpc.Response) error {
	if s.WriteUnbatchedFunc != nil {
		return s.WriteUnbatchedFunc(res)
	}

	return nil
}

func (s *ResponseWriterStub) WriteBatched(res jsonrpc.Response) error {
	if s.WriteBatchedFunc != nil {
		return s.WriteBatchedFunc(res)
	}

	return nil
}

func (s *ResponseWriterStub) Close() error {
	if s.CloseFunc != nil {
		return s.CloseFunc()
	}

	return nil
}
