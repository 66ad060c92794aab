// Package httptransport provides a net/http-based transport for a
// jsonrpc.Exchanger.
//
// Only requests using the application/json content type are accepted.
// Every JSON-RPC outcome that reaches the router — a success result or
// an error envelope, reserved code or not — is written back as HTTP 200;
// a non-200 status is used only when a request set could not be obtained
// at all, such as a malformed JSON body. Version-aware routing (path
// matching and method-name rewriting) is the responsibility of the
// sibling versioning package, which wraps a Handler rather than
// duplicating its logic.
package httptransport
