package cache

import "github.com/JaimeStill/camelrate/pkg/openapi"

var fingerprintParam = openapi.PathParam("fingerprint", "Perceptual image fingerprint")

var schemas = map[string]*openapi.Schema{
	"CacheEntry": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"fingerprint": {Type: "string"},
			"is_valid":    {Type: "boolean"},
			"outcome":     {Type: "object", Description: "Stored rating or rejection outcome"},
			"created_at":  {Type: "string", Format: "date-time"},
		},
	},
	"CachePage": openapi.PageOf("CacheEntry"),
}

var docs = struct {
	list, find, invalidate *openapi.Operation
}{
	list: &openapi.Operation{
		OperationID: "listCache",
		Summary:     "List cached outcomes, newest first",
		Parameters: append(openapi.PageParams(),
			openapi.QueryParam("is_valid", "boolean", "Only valid or only rejected images"),
		),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Cache page", "CachePage"),
		},
	},
	find: &openapi.Operation{
		OperationID: "findCacheEntry",
		Summary:     "Cached outcome for a fingerprint",
		Parameters:  []*openapi.Parameter{fingerprintParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Cache entry", "CacheEntry"),
			404: openapi.ResponseRef(openapi.NotFound),
		},
	},
	invalidate: &openapi.Operation{
		OperationID: "invalidateCacheEntry",
		Summary:     "Forget a cached outcome so the image is rated again",
		Parameters:  []*openapi.Parameter{fingerprintParam},
		Responses: map[int]*openapi.Response{
			204: {Description: "Invalidated"},
			404: openapi.ResponseRef(openapi.NotFound),
		},
	},
}
