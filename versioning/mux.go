package versioning

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Mount registers, for every distinct path in table (and each path's
// trailing-slash variant), a route on r that rewrites method names
// according to that path's Rewrites before forwarding matched POST
// requests to next.
//
// A request to any path not present in table falls through to r's
// default 404 handling, satisfying the "unregistered path returns 404"
// requirement without this package needing to special-case it.
func Mount(r *mux.Router, table Table, mw Middleware, next http.Handler) {
	mw.Next = next

	registered := make(map[string]bool, len(table))

	for path, rewrites := range table {
		p := path
		if p == "" {
			p = "/"
		}

		if registered[p] {
			continue
		}
		registered[p] = true

		handler := mw.ForPath(rewrites)

		r.Handle(p, handler).Methods(http.MethodPost)
		if p != "/" {
			r.Handle(p+"/", handler).Methods(http.MethodPost)
		}
	}
}
