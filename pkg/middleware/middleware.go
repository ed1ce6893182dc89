// Package middleware provides the HTTP middleware applied to API modules:
// CORS, request logging, and caller identity.
package middleware

import "net/http"

// Func wraps an http.Handler.
type Func = func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware.
// The first registered middleware is the outermost.
type System interface {
	Use(fns ...Func)
	Apply(handler http.Handler) http.Handler
}

type chain struct {
	stack []Func
}

// New creates an empty middleware System.
func New() System {
	return &chain{}
}

func (c *chain) Use(fns ...Func) {
	for _, fn := range fns {
		if fn != nil {
			c.stack = append(c.stack, fn)
		}
	}
}

func (c *chain) Apply(handler http.Handler) http.Handler {
	for i := len(c.stack) - 1; i >= 0; i-- {
		handler = c.stack[i](handler)
	}
	return handler
}
