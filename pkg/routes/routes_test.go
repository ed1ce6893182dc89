package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/camelrate/pkg/openapi"
	"github.com/JaimeStill/camelrate/pkg/routes"
)

func TestRegisterNestedGroups(t *testing.T) {
	var hit string
	handler := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) { hit = name }
	}

	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix: "/ratings",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: handler("rate")},
		},
		Children: []routes.Group{{
			Prefix: "/compare",
			Routes: []routes.Route{{Method: "POST", Pattern: "", Handler: handler("compare")}},
		}},
	})

	for path, want := range map[string]string{"/ratings": "rate", "/ratings/compare": "compare"} {
		hit = ""
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", path, nil))
		if hit != want {
			t.Errorf("%s: got %q, want %q", path, hit, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}
	spec := openapi.NewSpec(openapi.Config{}, "1")

	routes.Describe(spec, routes.Group{
		Prefix:      "/images",
		Tags:        []string{"Images"},
		Description: "archived images",
		Schemas:     map[string]*openapi.Schema{"Image": {Type: "string"}},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: noop, OpenAPI: &openapi.Operation{OperationID: "download"}},
			{Method: "DELETE", Pattern: "/{key...}", Handler: noop},
		},
		Children: []routes.Group{{
			Prefix: "/archive",
			Routes: []routes.Route{
				{Method: "POST", Pattern: "", Handler: noop, OpenAPI: &openapi.Operation{OperationID: "archive"}},
			},
		}},
	})

	item := spec.Paths["/images/{key}"]
	if item == nil || item.Get == nil || item.Get.OperationID != "download" {
		t.Fatalf("wildcard path not documented: %+v", spec.Paths)
	}
	if item.Delete != nil {
		t.Error("route without an operation should stay undocumented")
	}

	child := spec.Paths["/images/archive"]
	if child == nil || child.Post == nil || !slices.Equal(child.Post.Tags, []string{"Images"}) {
		t.Errorf("child should inherit group tags: %+v", child)
	}
	if len(spec.Tags) != 1 || spec.Tags[0].Description != "archived images" {
		t.Errorf("tags = %+v", spec.Tags)
	}
	if spec.Components.Schemas["Image"] == nil {
		t.Error("group schemas should be merged into components")
	}
}
