package jsonrpc

import (
	"context"
	"encoding/json"
	"io"
)

// Serve performs a single JSON-RPC exchange by reading the next request (or
// request batch) from r and writing the response(s) to w.
//
// It is a convenience wrapper around Exchange for transports that operate
// directly on an io.Reader/io.Writer pair — a Unix domain socket or standard
// input/output, for example — as opposed to the request/response cycle used
// by the httptransport package.
func Serve(
	ctx context.Context,
	e Exchanger,
	r io.Reader,
	w io.Writer,
	l ExchangeLogger,
) error {
	return Exchange(
		ctx,
		e,
		&streamRequestSetReader{r: r},
		&streamResponseWriter{w: w},
		l,
	)
}

// streamRequestSetReader adapts an io.Reader to the RequestSetReader
// interface for use with Serve.
type streamRequestSetReader struct {
	r io.Reader
}

func (s *streamRequestSetReader) Read(context.Context) (RequestSet, error) {
	return ParseRequestSet(s.r)
}

// streamResponseWriter adapts an io.Writer to the ResponseWriter interface
// for use with Serve, delimiting a batch response with the array brackets
// and commas a stream transport must supply for itself.
type streamResponseWriter struct {
	w       io.Writer
	isBatch bool
}

func (s *streamResponseWriter) WriteError(res ErrorResponse) error {
	return json.NewEncoder(s.w).Encode(res)
}

func (s *streamResponseWriter) WriteUnbatched(res Response) error {
	return json.NewEncoder(s.w).Encode(res)
}

func (s *streamResponseWriter) WriteBatched(res Response) error {
	separator := comma
	if !s.isBatch {
		separator = openArray
		s.isBatch = true
	}

	if _, err := s.w.Write(separator); err != nil {
		return err
	}

	return json.NewEncoder(s.w).Encode(res)
}

func (s *streamResponseWriter) Close() error {
	if s.isBatch {
		_, err := s.w.Write(closeArray)
		return err
	}

	return nil
}

var (
	openArray  = []byte(`[`)
	closeArray = []byte(`]`)
	comma      = []byte(`,`)
)
