package httptransport

import (
	"mime"
	"net/http"

	"github.com/relayrpc/jsonrpc"
)

// mediaType is the MIME media-type required of JSON-RPC requests and
// responses delivered over HTTP.
const mediaType = "application/json"

// Handler is an implementation of http.Handler that provides an
// HTTP-based transport for a JSON-RPC server.
type Handler struct {
	// Exchanger performs JSON-RPC exchanges.
	Exchanger jsonrpc.Exchanger

	// Logger is the target for log messages about JSON-RPC requests and
	// responses. If it is nil, Exchange's default logger is used.
	Logger jsonrpc.ExchangeLogger
}

var _ http.Handler = (*Handler)(nil)

// ServeHTTP handles the HTTP request.
//
// A request whose Content-Type is not application/json is rejected
// with a 415 Unsupported Media Type before any JSON-RPC processing is
// attempted; no JSON-RPC error envelope is produced for this case, per
// the transport-level nature of the failure.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != mediaType {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}

	rw := &responseWriter{target: w}

	jsonrpc.Exchange( // nolint:errcheck // error already logged, nothing more to do
		r.Context(),
		h.Exchanger,
		&requestSetReader{body: r.Body},
		rw,
		h.Logger,
	)
}
