package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/relayrpc/jsonrpc"
)

// responseWriter is an implementation of jsonrpc.ResponseWriter that writes
// responses to an http.ResponseWriter.
//
// Every well-formed JSON-RPC outcome — a success result or a JSON-RPC
// error envelope, reserved code or not — is written with HTTP 200 OK; only
// a failure to even obtain a request set (malformed JSON, an invalid
// request structure, or an IO error) is reported with a non-200 status,
// via WriteError.
type responseWriter struct {
	target http.ResponseWriter

	// arrayOpen indicates whether the JSON opening array bracket has
	// already been written as part of a batch response.
	arrayOpen bool
}

var (
	openArray  = []byte(`[`)
	closeArray = []byte(`]`)
	comma      = []byte(`,`)
)

// WriteError writes an error response that is a result of some problem
// with the request set as a whole, encountered before any individual
// request within it could be dispatched.
func (w *responseWriter) WriteError(res jsonrpc.ErrorResponse) error {
	status := httpStatusFromErrorCode(res.Error.Code)

	w.writeHeaders(status)
	return w.writeResponse(res)
}

// WriteUnbatched writes a response to an individual request that was not
// part of a batch.
//
// The HTTP status is always 200 OK: a JSON-RPC error response, reserved
// code or not, is a successful HTTP exchange that happens to carry a
// failed RPC outcome, not a transport failure.
func (w *responseWriter) WriteUnbatched(res jsonrpc.Response) error {
	w.writeHeaders(http.StatusOK)
	return w.writeResponse(res)
}

// WriteBatched writes a response to an individual request that was part
// of a batch.
//
// The HTTP status is always 200 OK, as even if res is an ErrorResponse,
// other responses in the batch may indicate a success.
func (w *responseWriter) WriteBatched(res jsonrpc.Response) error {
	separator := comma

	if !w.arrayOpen {
		w.writeHeaders(http.StatusOK)
		w.arrayOpen = true
		separator = openArray
	}

	if _, err := w.target.Write(separator); err != nil {
		return err
	}

	return w.writeResponse(res)
}

// Close is called to signal that there are no more responses to be sent.
func (w *responseWriter) Close() error {
	if w.arrayOpen {
		_, err := w.target.Write(closeArray)
		return err
	}

	return nil
}

func (w *responseWriter) writeHeaders(status int) {
	w.target.Header().Set("Content-Type", mediaType)
	w.target.WriteHeader(status)
}

func (w *responseWriter) writeResponse(res jsonrpc.Response) error {
	return json.NewEncoder(w.target).Encode(res)
}

// httpStatusFromErrorCode returns the HTTP status code to use when a
// request set as a whole could not be obtained.
//
// This is only ever consulted by WriteError, never by WriteUnbatched or
// WriteBatched: once a request has been parsed well enough to reach the
// router, every outcome — success or JSON-RPC error, reserved code or
// not — is reported as HTTP 200, as dictated by the JSON-RPC over HTTP
// binding used by this service.
func httpStatusFromErrorCode(c jsonrpc.ErrorCode) int {
	switch c {
	case jsonrpc.ParseErrorCode, jsonrpc.InvalidRequestCode:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
