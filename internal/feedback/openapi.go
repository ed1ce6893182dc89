package feedback

import "github.com/JaimeStill/camelrate/pkg/openapi"

var idParam = openapi.UUIDParam("id", "Feedback ID")

var scoreObject = &openapi.Schema{
	Type:        "object",
	Description: "Attribute scores keyed by attribute name",
}

var schemas = map[string]*openapi.Schema{
	"Feedback": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":              {Type: "string", Format: "uuid"},
			"category":        {Type: "string"},
			"image_url":       {Type: "string", Format: "uri"},
			"original_score":  scoreObject,
			"corrected_score": scoreObject,
			"reasoning":       {Type: "string", Nullable: true},
			"status":          {Type: "string", Enum: []any{string(StatusPending), string(StatusApproved), string(StatusRejected)}},
			"submitted_by":    {Type: "string", Nullable: true},
			"created_at":      {Type: "string", Format: "date-time"},
			"reviewed_at":     {Type: "string", Format: "date-time", Nullable: true},
		},
	},
	"SubmitFeedback": {
		Type:     "object",
		Required: []string{"category", "image_url", "corrected_score"},
		Properties: map[string]*openapi.Schema{
			"category":        {Type: "string"},
			"image_url":       {Type: "string", Format: "uri"},
			"original_score":  scoreObject,
			"corrected_score": scoreObject,
			"reasoning":       {Type: "string"},
		},
	},
	"FeedbackPage": openapi.PageOf("Feedback"),
}

func reviewDoc(id, summary string) *openapi.Operation {
	return &openapi.Operation{
		OperationID: id,
		Summary:     summary,
		Parameters:  []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Reviewed correction", "Feedback"),
			404: openapi.ResponseRef(openapi.NotFound),
			409: openapi.ResponseRef(openapi.Conflict),
		},
	}
}

var docs = struct {
	list, find, submit, approve, reject, remove *openapi.Operation
}{
	list: &openapi.Operation{
		OperationID: "listFeedback",
		Summary:     "List expert corrections",
		Parameters: append(openapi.PageParams(),
			openapi.QueryParam("category", "string", "Rating category"),
			openapi.QueryParam("status", "string", "pending, approved or rejected"),
			openapi.QueryParam("sort", "string", "Comma-separated fields, prefix - for descending"),
		),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Feedback page", "FeedbackPage"),
		},
	},
	find: &openapi.Operation{
		OperationID: "findFeedback",
		Summary:     "Find a correction",
		Parameters:  []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Correction", "Feedback"),
			400: openapi.ResponseRef(openapi.BadRequest),
			404: openapi.ResponseRef(openapi.NotFound),
		},
	},
	submit: &openapi.Operation{
		OperationID: "submitFeedback",
		Summary:     "Submit a correction for review",
		RequestBody: openapi.RequestBodyJSON("SubmitFeedback"),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Pending correction", "Feedback"),
			400: openapi.ResponseRef(openapi.BadRequest),
		},
	},
	approve: reviewDoc("approveFeedback", "Approve a pending correction as a golden example"),
	reject:  reviewDoc("rejectFeedback", "Reject a pending correction"),
	remove: &openapi.Operation{
		OperationID: "deleteFeedback",
		Summary:     "Delete a correction",
		Parameters:  []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			204: {Description: "Deleted"},
			404: openapi.ResponseRef(openapi.NotFound),
		},
	},
}
