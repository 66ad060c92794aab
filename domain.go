package jsonrpc

import "fmt"

// DomainError is an error produced by a method's business logic.
//
// It is distinct from Error (a JSON-RPC protocol error): a DomainError
// describes what went wrong in terms meaningful to the RPC's own domain
// (e.g. "no such contract"), not in terms of the JSON-RPC wire format. A
// method's user function returns ordinary Go errors; AsRPCError bridges them
// into the JSON-RPC error model at the adapter boundary (see method.go).
//
// Implementations carry a stable, positive, application-defined error code
// and a human-readable message, following the taxonomy of the upstream
// Starknet node this dispatcher's behavior is modeled on.
type DomainError interface {
	error

	// DomainCode returns the stable, positive integer code for this kind of
	// domain error.
	DomainCode() int
}

// domainError is the concrete DomainError used by the predefined taxonomy
// below.
type domainError struct {
	code    int
	message string
}

func (e domainError) Error() string   { return e.message }
func (e domainError) DomainCode() int { return e.code }

// The following are the stable, predefined members of the domain error
// taxonomy. Each corresponds one-to-one with a variant of the upstream
// node's RpcError enum. New domain errors should be added here rather than
// constructed ad-hoc, so that their codes remain stable across releases.
var (
	ErrFailedToReceiveTransaction      DomainError = domainError{1, "Failed to write transaction"}
	ErrContractNotFound                DomainError = domainError{20, "Contract not found"}
	ErrBlockNotFound                   DomainError = domainError{24, "Block not found"}
	ErrInvalidTransactionHash          DomainError = domainError{25, "Invalid transaction hash"}
	ErrInvalidBlockHash                DomainError = domainError{26, "Invalid block hash"}
	ErrInvalidTransactionIndex         DomainError = domainError{27, "Invalid transaction index in a block"}
	ErrClassHashNotFound               DomainError = domainError{28, "Class hash not found"}
	ErrTransactionHashNotFound         DomainError = domainError{29, "Transaction hash not found"}
	ErrPageSizeTooBig                  DomainError = domainError{31, "Requested page size is too big"}
	ErrNoBlocks                        DomainError = domainError{32, "There are no blocks"}
	ErrInvalidContinuationToken        DomainError = domainError{33, "The supplied continuation token is invalid or unknown"}
	ErrContractError                   DomainError = domainError{40, "Contract error"}
	ErrInvalidContractClass            DomainError = domainError{50, "Invalid contract class"}
	ErrClassAlreadyDeclared            DomainError = domainError{51, "Class already declared"}
	ErrInvalidTransactionNonce         DomainError = domainError{52, "Invalid transaction nonce"}
	ErrInsufficientMaxFee              DomainError = domainError{53, "Max fee is smaller than the minimal transaction cost"}
	ErrInsufficientAccountBalance      DomainError = domainError{54, "Account balance is smaller than the transaction's max fee"}
	ErrValidationFailure               DomainError = domainError{55, "Account validation failed"}
	ErrCompilationFailed               DomainError = domainError{56, "Compilation failed"}
	ErrContractClassSizeTooLarge       DomainError = domainError{57, "Contract class size is too large"}
	ErrNonAccount                      DomainError = domainError{58, "Sender address is not an account contract"}
	ErrDuplicateTransaction            DomainError = domainError{59, "A transaction with the same hash already exists in the mempool"}
	ErrCompiledClassHashMismatch       DomainError = domainError{60, "The compiled class hash did not match the one supplied in the transaction"}
	ErrUnsupportedTransactionVersion   DomainError = domainError{61, "The transaction version is not supported"}
	ErrUnsupportedContractClassVersion DomainError = domainError{62, "The contract class version is not supported"}
)

// TooManyKeysInFilter returns a domain error indicating that a filter
// contained more keys than the server allows.
func TooManyKeysInFilter(limit, requested int) DomainError {
	return domainError{
		code:    34,
		message: fmt.Sprintf("Too many keys provided in a filter: limit %d, got %d", limit, requested),
	}
}

// UnexpectedError returns a domain error for a condition that does not fit
// any other predefined taxonomy member. detail is folded into the message
// for diagnostic purposes; per spec.md §7 this still surfaces under its own
// DomainCode, not as a hidden-cause InternalError.
func UnexpectedError(detail string) DomainError {
	return domainError{
		code:    63,
		message: fmt.Sprintf("An unexpected error occurred: %s", detail),
	}
}

// ProofLimitExceeded returns a domain error indicating that a storage-proof
// request asked for more keys than the server permits.
func ProofLimitExceeded(limit, requested uint32) DomainError {
	return domainError{
		code:    10000,
		message: fmt.Sprintf("Too many storage keys requested: limit %d, got %d", limit, requested),
	}
}

// GatewayError wraps an error returned by an upstream gateway client.
//
// It is never exposed to the JSON-RPC caller under its own code: the bridge
// in AsRPCError always collapses it to InternalErrorCode with the generic
// message "Internal error", exactly like Internal. The distinction exists so
// that logging can tell the two failure sources apart.
type GatewayError struct {
	Cause error
}

func (e GatewayError) Error() string { return e.Cause.Error() }
func (e GatewayError) Unwrap() error { return e.Cause }

// Internal wraps an unexpected, non-domain error (a bug, an I/O failure,
// etc). Like GatewayError it always collapses to InternalErrorCode with the
// generic message "Internal error".
type Internal struct {
	Cause error
}

func (e Internal) Error() string { return e.Cause.Error() }
func (e Internal) Unwrap() error { return e.Cause }

// AsRPCError bridges a method's returned error into the JSON-RPC error
// model.
//
// If err is already an Error it is returned unmodified. If err is a
// DomainError, an ApplicationError is returned carrying the domain's stable
// code and message. If err is context.Canceled or context.DeadlineExceeded
// (or wraps one), the result is InternalErrorCode with err's own text as the
// message. If err is a GatewayError or an Internal (or any other error that
// is none of the above) the result is always InternalErrorCode with the
// fixed message "Internal error": the underlying error is retained as the
// cause for logging but is never serialized to the client, per the JSON-RPC
// layer's obligation not to leak implementation detail of upstream failures.
func AsRPCError(err error) Error {
	if err == nil {
		return Error{}
	}

	if e, ok := err.(Error); ok {
		return e
	}

	switch e := err.(type) {
	case GatewayError:
		return NewErrorWithReservedCode(
			InternalErrorCode,
			withHiddenCause(e.Cause),
		)
	case Internal:
		return NewErrorWithReservedCode(
			InternalErrorCode,
			withHiddenCause(e.Cause),
		)
	}

	if d, ok := err.(DomainError); ok {
		return NewError(
			ErrorCode(d.DomainCode()),
			WithMessage("%s", d.Error()),
		)
	}

	// A context cancelation or deadline describes why the call was abandoned,
	// not an implementation detail, so its text is reported to the client
	// and no hidden cause is retained.
	if !isInternalError(err) {
		return NewErrorWithReservedCode(
			InternalErrorCode,
			WithMessage("%s", err),
		)
	}

	// Anything else reaching this point is a bug in a method implementation
	// (an error type that isn't part of the domain taxonomy). Treat it the
	// same way as Internal: hide the detail, keep the cause for logging.
	return NewErrorWithReservedCode(
		InternalErrorCode,
		withHiddenCause(err),
	)
}
