// Package routes declares HTTP route tables that domain handlers hand to a
// ServeMux, together with the OpenAPI operations documenting them.
package routes

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/camelrate/pkg/openapi"
)

// Route binds an HTTP method and a prefix-relative pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Group collects routes under a shared prefix. Children nest beneath it.
// Tags and Schemas feed the OpenAPI document only.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Schemas     map[string]*openapi.Schema
	Routes      []Route
	Children    []Group
}

// Register mounts every route of groups, and of their children, on mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

func (g Group) register(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		child.register(mux, prefix)
	}
}

// Describe adds the documented routes of groups to spec. Routes without
// an operation are left out. Operations without tags inherit the group's.
func Describe(spec *openapi.Spec, groups ...Group) {
	for _, g := range groups {
		g.describe(spec, "", nil)
	}
}

func (g Group) describe(spec *openapi.Spec, parent string, inherited []string) {
	prefix := parent + g.Prefix
	tags := inherited
	if len(g.Tags) > 0 {
		tags = g.Tags
		for _, t := range g.Tags {
			spec.AddTag(t, g.Description)
		}
	}
	if g.Schemas != nil {
		spec.Components.AddSchemas(g.Schemas)
	}

	for _, r := range g.Routes {
		if r.OpenAPI == nil {
			continue
		}
		op := *r.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}
		spec.Path(docPath(prefix+r.Pattern)).Set(r.Method, &op)
	}
	for _, child := range g.Children {
		child.describe(spec, prefix, tags)
	}
}

// docPath turns a ServeMux pattern into an OpenAPI path template.
// Wildcards such as {key...} become {key}; {$} is dropped.
func docPath(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "{$}", "")
	pattern = strings.ReplaceAll(pattern, "...}", "}")
	if pattern == "" {
		return "/"
	}
	return pattern
}
