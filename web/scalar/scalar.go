// Package scalar serves the Scalar API reference page for the API's
// OpenAPI document.
package scalar

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/JaimeStill/camelrate/pkg/module"
)

//go:embed index.html
var indexHTML string

var page = template.Must(template.New("index").Parse(indexHTML))

// NewModule mounts the reference page at basePath, reading the document
// from specURL.
func NewModule(basePath, title, specURL string) (*module.Module, error) {
	data := struct{ Title, SpecURL string }{title, specURL}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page.Execute(w, data)
	})

	return module.New(basePath, mux)
}
