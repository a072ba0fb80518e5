// Package kit provides the endpoint abstraction clipd transports share.
//
// Every tool the engine exposes is an Endpoint: decode the wire request into
// a typed value, run business logic, encode the result. The MCP transport in
// this package and the HTTP surface in engine both terminate on Endpoints,
// so the engine never sees wire formats.
package kit

import "context"

// Endpoint is a single business operation: typed request in, result out.
type Endpoint func(ctx context.Context, request any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first one listed is the outermost.
func Chain(outer Middleware, others ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(others) - 1; i >= 0; i-- {
			next = others[i](next)
		}
		return outer(next)
	}
}
