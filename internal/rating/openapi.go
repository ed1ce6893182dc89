package rating

import "github.com/JaimeStill/camelrate/pkg/openapi"

var (
	str     = &openapi.Schema{Type: "string"}
	number  = &openapi.Schema{Type: "number"}
	boolean = &openapi.Schema{Type: "boolean"}
	strList = &openapi.Schema{Type: "array", Items: str}
)

var genderSchema = &openapi.Schema{
	Type:        "string",
	Description: "Selects gender-specific weights; case-insensitive, empty means unknown",
	Enum:        []any{"male", "female", "unknown"},
}

var schemas = map[string]*openapi.Schema{
	"RateRequest": {
		Type:     "object",
		Required: []string{"image_url"},
		Properties: map[string]*openapi.Schema{
			"image_url": {Type: "string", Format: "uri", Example: "https://example.com/camel.jpg"},
			"gender":    genderSchema,
		},
	},
	"CompareRequest": {
		Type:     "object",
		Required: []string{"image_url_1", "image_url_2"},
		Properties: map[string]*openapi.Schema{
			"image_url_1": {Type: "string", Format: "uri"},
			"image_url_2": {Type: "string", Format: "uri"},
			"gender":      genderSchema,
		},
	},
	"ValidationResult": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"contains_camel": boolean,
			"visible_parts": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"head": boolean, "neck": boolean, "body": boolean, "legs": boolean,
				},
			},
			"overall_suitability": boolean,
			"feedback":            str,
			"missing_parts":       strList,
			"quality_issues":      strList,
		},
	},
	"Rating": {
		Type:        "object",
		Description: "Cached or freshly computed outcome plus request metadata",
		Properties: map[string]*openapi.Schema{
			"is_valid_camel":          boolean,
			"validation_result":       openapi.SchemaRef("ValidationResult"),
			"category_results":        {Type: "object", AdditionalProperties: &openapi.Schema{Type: "object"}},
			"overall_score":           {Type: "number", Minimum: ptr(0), Maximum: ptr(10)},
			"category_scores":         {Type: "object", AdditionalProperties: number},
			"processing_time_seconds": number,
			"cached":                  boolean,
			"fingerprint":             str,
			"response_time_ms":        {Type: "integer"},
		},
	},
	"Rejection": {
		Type:        "object",
		Description: "Image refused by the validation gate",
		Properties: map[string]*openapi.Schema{
			"error":             str,
			"feedback":          str,
			"missing_parts":     strList,
			"quality_issues":    strList,
			"suggestions":       strList,
			"validation_result": openapi.SchemaRef("ValidationResult"),
			"cached":            boolean,
			"image":             str,
		},
	},
	"Comparison": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"camel_1":          openapi.SchemaRef("Rating"),
			"camel_2":          openapi.SchemaRef("Rating"),
			"winner":           {Type: "string", Enum: []any{WinnerFirst, WinnerSecond, WinnerTie}},
			"score_difference": number,
		},
	},
	"Weights": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"gender":         str,
			"default_weight": {Type: "integer"},
			"weights":        {Type: "object", AdditionalProperties: &openapi.Schema{Type: "integer"}},
			"categories":     strList,
		},
	},
}

var rejected = openapi.ResponseJSON("Image rejected by validation", "Rejection")

var docs = struct {
	rate, compare, weights *openapi.Operation
}{
	rate: &openapi.Operation{
		OperationID: "rateCamel",
		Summary:     "Rate one camel image",
		RequestBody: openapi.RequestBodyJSON("RateRequest"),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Rating", "Rating"),
			400: rejected,
			500: openapi.ResponseRef(openapi.ServerError),
			504: {Description: "Rating timed out"},
		},
	},
	compare: &openapi.Operation{
		OperationID: "compareCamels",
		Summary:     "Rate two images and pick the winner",
		RequestBody: openapi.RequestBodyJSON("CompareRequest"),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Comparison", "Comparison"),
			400: rejected,
			500: openapi.ResponseRef(openapi.ServerError),
		},
	},
	weights: &openapi.Operation{
		OperationID: "ratingWeights",
		Summary:     "Attribute weights for a gender",
		Parameters:  []*openapi.Parameter{openapi.QueryParam("gender", "string", "male, female or unknown")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Resolved weights", "Weights"),
			400: openapi.ResponseRef(openapi.BadRequest),
		},
	},
}

func ptr(v float64) *float64 { return &v }
