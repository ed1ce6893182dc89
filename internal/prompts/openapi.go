package prompts

import "github.com/JaimeStill/camelrate/pkg/openapi"

var schemas = map[string]*openapi.Schema{
	"Prompt": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"category":      {Type: "string"},
			"gender":        {Type: "string"},
			"system_prompt": {Type: "string", Description: "Rendered prompt including golden examples"},
			"predefined_messages": {
				Type:        "array",
				Description: "Few-shot conversation turns sent before the image",
				Items:       &openapi.Schema{Type: "object"},
			},
		},
	},
}

var docs = struct {
	categories, find, reload *openapi.Operation
}{
	categories: &openapi.Operation{
		OperationID: "listCategories",
		Summary:     "Rating categories with a prompt template",
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Category names",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}},
				},
			},
		},
	},
	find: &openapi.Operation{
		OperationID: "renderPrompt",
		Summary:     "Render the system prompt for a category",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("category", "Rating category such as head or neck"),
			openapi.QueryParam("gender", "string", "male, female or unknown"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Rendered prompt", "Prompt"),
			400: openapi.ResponseRef(openapi.BadRequest),
			404: openapi.ResponseRef(openapi.NotFound),
		},
	},
	reload: &openapi.Operation{
		OperationID: "reloadPrompts",
		Summary:     "Drop cached templates so edited files are read again",
		Responses: map[int]*openapi.Response{
			204: {Description: "Reloaded"},
		},
	},
}
