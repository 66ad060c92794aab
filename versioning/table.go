// Package versioning implements the path-to-method-prefix rewriting that
// lets a single JSON-RPC method table serve multiple API versions mounted
// at distinct URL paths.
package versioning

import "strings"

// Rewrite describes a single method-name prefix rewrite. A method whose
// name begins with OldPrefix is rewritten by prepending NewPrefix in
// front of the unmodified name — the old prefix is retained, not
// replaced, so the backing method table can key its entries as, e.g.,
// "v0.3_starknet_chainId".
type Rewrite struct {
	OldPrefix string
	NewPrefix string
}

// Table maps a URL path to the ordered list of rewrites that apply to
// requests arriving at that path. For a given method name, the first
// Rewrite whose OldPrefix matches wins.
type Table map[string][]Rewrite

// DefaultTable reproduces the illustrative path table: the root path and
// the "/rpc/v0.2" path share a rewrite set covering both starknet_ and
// pathfinder_ methods, "/rpc/v0.3" rewrites only starknet_ methods, and
// "/rpc/pathfinder/v0.1" rewrites only pathfinder_ methods.
func DefaultTable() Table {
	v02Rewrites := []Rewrite{
		{OldPrefix: "starknet_", NewPrefix: "v0.2_"},
		{OldPrefix: "pathfinder_", NewPrefix: "v0.1_"},
	}

	return Table{
		"":          v02Rewrites,
		"/":         v02Rewrites,
		"/rpc/v0.2": v02Rewrites,
		"/rpc/v0.3": {
			{OldPrefix: "starknet_", NewPrefix: "v0.3_"},
		},
		"/rpc/pathfinder/v0.1": {
			{OldPrefix: "pathfinder_", NewPrefix: "v0.1_"},
		},
	}
}

// rewriteMethod returns the rewritten form of method using the first
// matching rewrite in rewrites, or method unchanged if none match.
func rewriteMethod(method string, rewrites []Rewrite) string {
	for _, rw := range rewrites {
		if strings.HasPrefix(method, rw.OldPrefix) {
			return rw.NewPrefix + method
		}
	}

	return method
}
