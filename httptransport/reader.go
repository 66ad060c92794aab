package httptransport

import (
	"context"
	"io"

	"github.com/relayrpc/jsonrpc"
)

// requestSetReader is an implementation of jsonrpc.RequestSetReader that
// reads a JSON-RPC request set from the body of an HTTP request.
type requestSetReader struct {
	body io.Reader
}

// Read reads the next RequestSet that is to be processed.
func (r *requestSetReader) Read(context.Context) (jsonrpc.RequestSet, error) {
	return jsonrpc.ParseRequestSet(r.body)
}
