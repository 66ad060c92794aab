package versioning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/relayrpc/jsonrpc"
)

// Middleware rewrites JSON-RPC method names according to a set of
// Rewrites before forwarding the request body to Next.
type Middleware struct {
	// Next is the inner handler that receives the rewritten request body.
	Next http.Handler

	// MaxBodySize bounds the number of bytes this middleware will read
	// from a request body before rejecting it with 413 Payload Too
	// Large. Zero means unbounded.
	MaxBodySize int64
}

// ForPath returns an http.Handler that applies rewrites to the body of
// every request before forwarding it to m.Next. It is the handler that
// should be registered against a single versioned route; see Mount to
// register every path in a Table at once.
func (m Middleware) ForPath(rewrites []Rewrite) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := m.readBody(w, r)
		if !ok {
			return
		}

		rewritten, malformed, err := rewriteBody(data, rewrites)
		if err != nil {
			if malformed {
				writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.ParseError(
					jsonrpc.WithCause(err),
				))
			} else {
				writeJSONRPCError(w, http.StatusInternalServerError, jsonrpc.NewErrorWithReservedCode(
					jsonrpc.InternalErrorCode,
					jsonrpc.WithCause(fmt.Errorf("unable to rewrite JSON-RPC request: %w", err)),
				))
			}

			return
		}

		r2 := r.Clone(r.Context())
		r2.Body = io.NopCloser(bytes.NewReader(rewritten))
		r2.ContentLength = int64(len(rewritten))

		m.Next.ServeHTTP(w, r2)
	})
}

// readBody reads the request body, enforcing MaxBodySize. It writes an
// appropriate error response and returns ok == false if the body could
// not be read or exceeds the configured limit.
func (m Middleware) readBody(w http.ResponseWriter, r *http.Request) (_ []byte, ok bool) {
	if m.MaxBodySize > 0 && r.ContentLength > m.MaxBodySize {
		writeJSONRPCError(w, http.StatusRequestEntityTooLarge, jsonrpc.ParseError(
			jsonrpc.WithMessage("request body exceeds the maximum allowed size"),
		))

		return nil, false
	}

	body := io.Reader(r.Body)
	limit := m.MaxBodySize
	if limit > 0 {
		body = io.LimitReader(r.Body, limit+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		writeJSONRPCError(w, http.StatusBadRequest, jsonrpc.ParseError(
			jsonrpc.WithCause(fmt.Errorf("unable to read HTTP request body: %w", err)),
		))

		return nil, false
	}

	if limit > 0 && int64(len(data)) > limit {
		writeJSONRPCError(w, http.StatusRequestEntityTooLarge, jsonrpc.ParseError(
			jsonrpc.WithMessage("request body exceeds the maximum allowed size"),
		))

		return nil, false
	}

	return data, true
}

// rewriteBody rewrites the method name(s) carried by a JSON-RPC request or
// batch. malformed is true when data is not valid JSON at all, which the
// caller reports as a transport-level parse failure rather than a bug in
// the rewriting logic itself.
func rewriteBody(data []byte, rewrites []Rewrite) (_ []byte, malformed bool, _ error) {
	if !json.Valid(data) {
		return nil, true, fmt.Errorf("invalid JSON")
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return nil, true, err
		}

		for i, e := range elems {
			rewritten, err := rewriteElement(e, rewrites)
			if err != nil {
				return nil, false, err
			}

			elems[i] = rewritten
		}

		out, err := json.Marshal(elems)
		return out, false, err
	}

	out, err := rewriteElement(data, rewrites)
	return out, false, err
}

// rewriteElement rewrites the "method" field of a single JSON-RPC request
// object. Elements that are not JSON objects, or that have no string
// "method" field, are returned unmodified — it is the dispatcher's job to
// reject them as invalid requests, not this middleware's.
func rewriteElement(raw json.RawMessage, rewrites []Rewrite) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw, nil
	}

	methodRaw, ok := obj["method"]
	if !ok {
		return raw, nil
	}

	var method string
	if err := json.Unmarshal(methodRaw, &method); err != nil {
		return raw, nil
	}

	rewritten := rewriteMethod(method, rewrites)
	if rewritten == method {
		return raw, nil
	}

	encoded, err := json.Marshal(rewritten)
	if err != nil {
		return nil, err
	}

	obj["method"] = encoded
	return json.Marshal(obj)
}

// writeJSONRPCError writes a JSON-RPC error response with id=null at the
// given HTTP status.
func writeJSONRPCError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(jsonrpc.NewErrorResponse(nil, err)) // nolint:errcheck
}
