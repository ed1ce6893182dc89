package openapi

import (
	"maps"
	"net/http"
)

// Shared response names registered by NewComponents.
const (
	BadRequest  = "BadRequest"
	NotFound    = "NotFound"
	Conflict    = "Conflict"
	ServerError = "ServerError"
)

var errorBody = map[string]*MediaType{
	"application/json": {Schema: SchemaRef("Error")},
}

// NewComponents returns the error schema and the error responses every
// handler can produce.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:       "object",
				Required:   []string{"error"},
				Properties: map[string]*Schema{"error": {Type: "string"}},
			},
		},
		Responses: map[string]*Response{
			BadRequest:  {Description: http.StatusText(http.StatusBadRequest), Content: errorBody},
			NotFound:    {Description: http.StatusText(http.StatusNotFound), Content: errorBody},
			Conflict:    {Description: http.StatusText(http.StatusConflict), Content: errorBody},
			ServerError: {Description: http.StatusText(http.StatusInternalServerError), Content: errorBody},
		},
	}
}

// AddSchemas merges schemas, replacing any with the same name.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// PageOf is a page of items of the named schema, matching the paginated
// list responses.
func PageOf(schemaName string) *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"data":        {Type: "array", Items: SchemaRef(schemaName)},
			"total":       {Type: "integer"},
			"page":        {Type: "integer", Example: 1},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	}
}

// PageParams are the query parameters every paginated list accepts.
func PageParams() []*Parameter {
	return []*Parameter{
		QueryParam("page", "integer", "Page number, starting at 1"),
		QueryParam("page_size", "integer", "Results per page"),
	}
}
