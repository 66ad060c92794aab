package jsonrpc

import "fmt"

// Error is a Go error that describes a JSON-RPC error.
type Error struct {
	code    ErrorCode
	message string
	data    interface{}
	cause   error
}

// newError returns a new Error with the given code.
//
// The options are applied in order.
func newError(code ErrorCode, options []ErrorOption) Error {
	e := Error{
		code: code,
	}

	for _, opt := range options {
		opt(&e)
	}

	return e
}

// NewError returns a new JSON-RPC error with an application-defined error
// code.
//
// The error codes from and including -32768 to -32000 are reserved for
// pre-defined errors by the JSON-RPC specification. Use of a code within this
// range causes a panic.
func NewError(code ErrorCode, options ...ErrorOption) Error {
	if code.IsReserved() {
		panic(fmt.Sprintf("the error code %d is reserved by the JSON-RPC specification (%s)", code, code))
	}

	return newError(code, options)
}

// NewErrorWithReservedCode returns a new JSON-RPC error that uses a reserved
// error code.
//
// The error codes from and including -32768 to -32000 are reserved for
// pre-defined errors by the JSON-RPC specification. Use of a code outside
// this range causes a panic.
//
// This function is provided to allow the router and its adapters to produce
// errors with reserved codes. Under normal circumstances NewError() should be
// used instead.
func NewErrorWithReservedCode(code ErrorCode, options ...ErrorOption) Error {
	if !code.IsReserved() {
		panic(fmt.Sprintf("the error code %d is not reserved by the JSON-RPC specification", code))
	}

	return newError(code, options)
}

// ParseError returns an error that indicates the request body could not be
// parsed as JSON.
func ParseError(options ...ErrorOption) Error {
	return newError(ParseErrorCode, options)
}

// InvalidRequest returns an error that indicates the request was well-formed
// JSON but not a valid JSON-RPC request.
func InvalidRequest(options ...ErrorOption) Error {
	return newError(InvalidRequestCode, options)
}

// MethodNotFound returns an error that indicates the requested method does
// not exist.
func MethodNotFound(options ...ErrorOption) Error {
	return newError(MethodNotFoundCode, options)
}

// InvalidParameters returns an error that indicates the provided parameters
// are malformed or invalid.
func InvalidParameters(options ...ErrorOption) Error {
	return newError(InvalidParametersCode, options)
}

// withHiddenCause is like WithCause except that it does not fall back to
// using the cause's message as the error's user-defined message.
//
// It is used by the domain error bridge (see domain.go) to retain a cause
// for logging purposes while ensuring the generic "Internal error" message
// (and no other detail) ever reaches the client.
func withHiddenCause(c error) ErrorOption {
	return func(e *Error) {
		e.cause = c
	}
}

// Code returns the JSON-RPC error code.
func (e Error) Code() ErrorCode {
	return e.code
}

// Message returns the error message.
func (e Error) Message() string {
	if e.message != "" {
		return e.message
	}

	return e.code.String()
}

// Data returns the user-defined data associated with the error.
func (e Error) Data() interface{} {
	return e.data
}

// Error returns the error message.
func (e Error) Error() string {
	return describeError(e.code, e.message)
}

// Unwrap returns the cause of e, if known.
func (e Error) Unwrap() error {
	return e.cause
}

// ErrorOption is an option that provides further information about an error.
type ErrorOption func(*Error)

// WithCause is an ErrorOption that associates a causal error with a JSON-RPC
// error.
//
// c is wrapped by the resulting JSON-RPC error, such as it can be used with
// errors.Is() and errors.As(). The cause is never sent to the client; it is
// only available to an ExchangeLogger.
//
// If the JSON-RPC error does not already have a user-defined message, c.Error()
// is used as the user-defined message.
func WithCause(c error) ErrorOption {
	return func(e *Error) {
		e.cause = c

		if e.message == "" {
			e.message = c.Error()
		}
	}
}

// WithMessage is an ErrorOption that provides a user-defined error message
// for a JSON-RPC error.
//
// This message should be used to provide additional information that can
// help diagnose the error.
func WithMessage(format string, values ...interface{}) ErrorOption {
	return func(e *Error) {
		e.message = fmt.Sprintf(format, values...)
	}
}

// WithData is an ErrorOption that associates additional data with an error.
//
// The data is provided to the RPC caller via the "data" field of the error
// object in the JSON-RPC response.
func WithData(data interface{}) ErrorOption {
	return func(e *Error) {
		e.data = data
	}
}
