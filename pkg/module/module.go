// Package module mounts self-contained HTTP surfaces, each with its own
// middleware, under a one-segment path prefix.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/camelrate/pkg/middleware"
)

// ErrInvalidPrefix is returned by New when the prefix is not of the form "/name".
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module serves requests below its prefix. The inner router sees paths
// relative to the prefix, so "/api/ratings" arrives as "/ratings".
type Module struct {
	prefix string
	inner  http.Handler
	stack  middleware.System

	once    sync.Once
	wrapped http.Handler
}

// New mounts router under prefix. Middleware added with Use applies only
// to this module and must be registered before the first request.
func New(prefix string, router http.Handler) (*Module, error) {
	name, ok := strings.CutPrefix(prefix, "/")
	switch {
	case !ok:
		return nil, fmt.Errorf("%w: %q has no leading slash", ErrInvalidPrefix, prefix)
	case name == "" || strings.Contains(name, "/"):
		return nil, fmt.Errorf("%w: %q is not one path segment", ErrInvalidPrefix, prefix)
	}

	return &Module{
		prefix: prefix,
		inner:  router,
		stack:  middleware.New(),
	}, nil
}

func (m *Module) Prefix() string { return m.prefix }

// Use appends middleware; the first one added runs outermost.
func (m *Module) Use(fns ...middleware.Func) {
	m.stack.Use(fns...)
}

func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.once.Do(func() {
		m.wrapped = m.stack.Apply(m.inner)
	})
	m.wrapped.ServeHTTP(w, m.relative(req))
}

// relative returns a shallow copy of req with the prefix removed from its
// path. The caller's request and URL are left untouched.
func (m *Module) relative(req *http.Request) *http.Request {
	rest := strings.TrimPrefix(req.URL.Path, m.prefix)
	if rest == "" {
		rest = "/"
	}

	u := *req.URL
	u.Path, u.RawPath = rest, ""

	out := *req
	out.URL = &u
	return &out
}
