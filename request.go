package jsonrpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"unicode"

	"github.com/relayrpc/jsonrpc/internal/jsonx"
)

// JSONRPCVersion is the version that must appear in the "jsonrpc" field of
// JSON-RPC 2.0 requests and responses.
const JSONRPCVersion = "2.0"

// Request encapsulates a JSON-RPC request.
type Request struct {
	// Version is the JSON-RPC version.
	//
	// As per the JSON-RPC specification it MUST be exactly "2.0".
	Version string `json:"jsonrpc"`

	// ID uniquely identifies requests that expect a response, that is RPC calls
	// as opposed to notifications.
	//
	// As per the JSON-RPC specification, it MUST be a JSON string, number, or
	// null value. It SHOULD NOT normally not be null. Numbers SHOULD NOT
	// contain fractional parts.
	//
	// If the ID field itself is nil, the request is a notification.
	ID json.RawMessage `json:"id,omitempty"`

	// Method is the name of the RPC method to be invoked.
	//
	// As per the JSON-RPC specification, method names that begin with "rpc."
	// are reserved for system extensions, and MUST NOT be used for anything
	// else.
	//
	// By convention within this module, method names are additionally
	// expected to carry a version prefix (such as "v0.2_") applied by the
	// versioning middleware before the request ever reaches a Router.
	Method string `json:"method"`

	// Parameters holds the parameter values to be used during the invocation of
	// the method.
	//
	// As per the JSON-RPC specification it MUST be a structured value, that is
	// either a JSON array or object.
	//
	// Validation of the parameters is the responsibility of the user-defined
	// handlers.
	Parameters json.RawMessage `json:"params,omitempty"`

	// malformed holds the error discovered while isolating this request
	// from a batch, if the batch element could not be decoded into a
	// Request at all. It takes precedence over every other check in
	// Validate().
	malformed *Error
}

// IsNotification returns true if r is a notification, as opposed to an RPC call
// that expects a response.
func (r Request) IsNotification() bool {
	return r.ID == nil
}

// Validate returns true if the request is valid.
//
// If r is invalid it returns an Error describing the problem.
func (r Request) Validate() (Error, bool) {
	if r.malformed != nil {
		return *r.malformed, false
	}

	if r.Version != JSONRPCVersion {
		return NewErrorWithReservedCode(
			InvalidRequestCode,
			WithMessage(`request version must be "2.0"`),
		), false
	}

	if r.ID != nil {
		return validateRequestID(r.ID)
	}

	return Error{}, true
}

// UnmarshalParameters is a convenience method for unmarshaling request
// parameters into a Go value.
//
// It returns the appropriate native JSON-RPC error if r.Parameters can not be
// unmarshaled into v.
//
// If v implements the Validatable interface, it calls v.Validate() after
// unmarshaling successfully. If validation fails it wraps the validation error
// in the appropriate native JSON-RPC error.
func (r Request) UnmarshalParameters(v interface{}, options ...jsonx.UnmarshalOption) error {
	if err := jsonx.Unmarshal(r.Parameters, v, options...); err != nil {
		return InvalidParameters(
			WithCause(err),
		)
	}

	if v, ok := v.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return InvalidParameters(
				WithCause(err),
			)
		}
	}

	return nil
}

// validateRequestID returns false if the given request ID is not one of the
// accepted types.
func validateRequestID(id json.RawMessage) (Error, bool) {
	var value interface{}
	if err := json.Unmarshal(id, &value); err != nil {
		return NewErrorWithReservedCode(
			ParseErrorCode,
			WithCause(err),
		), false
	}

	switch value.(type) {
	case string:
		return Error{}, true
	case float64:
		return Error{}, true
	case nil:
		return Error{}, true
	default:
		return NewErrorWithReservedCode(
			InvalidRequestCode,
			WithMessage(`request ID must be a JSON string, number or null`),
		), false
	}
}

// RequestSet encapsulates one or more JSON-RPC requests that were parsed from a
// single JSON message.
type RequestSet struct {
	// Requests contains the requests parsed from the message.
	Requests []Request

	// IsBatch is true if the requests are part of a batch.
	//
	// This is used to disambiguate between a single request and a batch that
	// contains only one request.
	IsBatch bool
}

// ParseRequestSet reads and parses a JSON-RPC request or request batch from r.
//
// If there is a problem parsing the request or the request is malformed, an
// Error is returned. Any other non-nil error should be considered an IO error.
//
// On success it returns a request set containing well-formed (but not
// necessarily valid) requests. Use ValidateServerSide() to check that the
// request set, and the requests within it, satisfy the JSON-RPC
// specification.
func ParseRequestSet(r io.Reader) (RequestSet, error) {
	br := bufio.NewReader(r)

	for {
		ch, _, err := br.ReadRune()
		if err != nil {
			return RequestSet{}, err
		}

		if unicode.IsSpace(ch) {
			continue
		}

		if err := br.UnreadRune(); err != nil {
			panic(err) // only occurs if a rune hasn't already been read
		}

		if ch == '[' {
			return parseBatchRequest(br)
		}

		return parseSingleRequest(br)
	}
}

// ValidateServerSide returns true if the request set is valid.
//
// If rs is invalid it returns an Error describing the problem.
//
// For a batch, only the shape of the batch itself is checked here: an
// individual request within the batch that fails Validate() does not
// invalidate the rest of the batch, it is instead reported as that
// request's own error response once the batch is exchanged (see
// exchangeOne). A non-batch request set, by contrast, has nothing for an
// invalid request to be isolated from, so its single request is validated
// here and rejects the whole exchange.
func (rs RequestSet) ValidateServerSide() (Error, bool) {
	if rs.IsBatch {
		if len(rs.Requests) == 0 {
			return NewErrorWithReservedCode(
				InvalidRequestCode,
				WithMessage("batches must contain at least one request"),
			), false
		}

		return Error{}, true
	}

	if len(rs.Requests) != 1 {
		return NewErrorWithReservedCode(
			InvalidRequestCode,
			WithMessage("non-batch request sets must contain exactly one request"),
		), false
	}

	if err, ok := rs.Requests[0].Validate(); !ok {
		return err, false
	}

	return Error{}, true
}

func parseSingleRequest(r *bufio.Reader) (RequestSet, error) {
	var req Request

	if err := parse(r, &req); err != nil {
		return RequestSet{}, err
	}

	return RequestSet{
		Requests: []Request{req},
		IsBatch:  false,
	}, nil
}

// parseBatchRequest parses a JSON-RPC batch.
//
// Each element is isolated and decoded independently: an element that is
// well-formed JSON but does not describe a valid Request (such as a bare
// number, or an object with the wrong shape) does not prevent the other
// elements of the batch from being parsed. It instead yields a Request
// that carries its own parse error, to be reported as that element's own
// error response (see Request.Validate and exchangeOne).
func parseBatchRequest(r *bufio.Reader) (RequestSet, error) {
	var elements []json.RawMessage

	if err := parse(r, &elements); err != nil {
		return RequestSet{}, err
	}

	batch := make([]Request, len(elements))
	for i, raw := range elements {
		req, err := parseBatchElement(raw)
		if err != nil {
			return RequestSet{}, err
		}

		batch[i] = req
	}

	return RequestSet{
		Requests: batch,
		IsBatch:  true,
	}, nil
}

// parseBatchElement decodes a single element of a JSON-RPC batch.
//
// If raw does not describe a valid Request, the returned Request carries
// the failure as its malformed error rather than the error being returned
// directly, so that one bad element does not prevent the rest of the
// batch from being processed.
func parseBatchElement(raw json.RawMessage) (Request, error) {
	var req Request

	err := parse(bytes.NewReader(raw), &req)
	if err == nil {
		return req, nil
	}

	rpcErr, ok := err.(Error)
	if !ok {
		return Request{}, err
	}

	return Request{malformed: &rpcErr}, nil
}

func parse(r io.Reader, v interface{}) error {
	err := jsonx.Decode(r, v)

	switch {
	case jsonx.IsMalformedJSON(err):
		// The JSON text itself could not be tokenized at all.
		return NewErrorWithReservedCode(
			ParseErrorCode,
			WithCause(fmt.Errorf("unable to parse request: %w", err)),
		)

	case jsonx.IsParseError(err):
		// The JSON was well-formed but did not describe a request (or
		// batch of requests) of the expected shape, e.g. a field held a
		// value of the wrong type, or carried an unknown field.
		return NewErrorWithReservedCode(
			InvalidRequestCode,
			WithCause(fmt.Errorf("request is not a valid JSON-RPC request: %w", err)),
		)
	}

	return err
}

// Validatable is an interface for parameter values that provide their own
// validation.
type Validatable interface {
	// Validate returns a non-nil error if the value is invalid.
	//
	// The returned error, if non-nil, is always wrapped in a JSON-RPC "invalid
	// parameters" error, and therefore should not itself be a JSON-RPC error.
	Validate() error
}
