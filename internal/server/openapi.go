package server

import (
	"net/http"
	"reflect"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dmitrymomot/mailify/handler"
	"github.com/dmitrymomot/mailify/pkg/apierror"
	"github.com/dmitrymomot/mailify/pkg/engine/source"
)

const jsonContent = "application/json"

// describe builds the API description served at /openapi.json.
func (s *Server) describe() *huma.OpenAPI {
	registry := huma.NewMapRegistry("#/components/schemas/", huma.DefaultSchemaNamer)
	errRef := apierror.Register(registry)

	sendBody := registry.Schema(reflect.TypeFor[SendRequest](), true, "SendRequest")
	meta := registry.Schema(reflect.TypeFor[source.Metadata](), true, "Metadata")

	nameParam := &huma.Param{
		Name:        "name",
		In:          "path",
		Description: "Template name.",
		Required:    true,
		Schema:      &huma.Schema{Type: huma.TypeString},
	}

	errorResponses := func(statuses ...int) map[string]*huma.Response {
		out := make(map[string]*huma.Response, len(statuses))
		for _, status := range statuses {
			out[strconv.Itoa(status)] = &huma.Response{
				Description: http.StatusText(status),
				Content:     map[string]*huma.MediaType{jsonContent: {Schema: errRef}},
			}
		}
		return out
	}

	send := &huma.Operation{
		OperationID: "send-template",
		Summary:     "Render a template and send it",
		Tags:        []string{"templates"},
		Parameters:  []*huma.Param{nameParam},
		RequestBody: &huma.RequestBody{
			Required: true,
			Content:  map[string]*huma.MediaType{jsonContent: {Schema: sendBody}},
		},
		Responses: errorResponses(http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway),
	}
	send.Responses[strconv.Itoa(http.StatusNoContent)] = &huma.Response{Description: "Message sent"}

	get := &huma.Operation{
		OperationID: "get-template",
		Summary:     "Describe a template",
		Tags:        []string{"templates"},
		Parameters:  []*huma.Param{nameParam},
		Responses:   errorResponses(http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway),
	}
	get.Responses[strconv.Itoa(http.StatusOK)] = &huma.Response{
		Description: "Template metadata",
		Content: map[string]*huma.MediaType{jsonContent: {Schema: &huma.Schema{
			Type:       huma.TypeObject,
			Properties: map[string]*huma.Schema{"data": meta},
			Required:   []string{"data"},
		}}},
	}

	return &huma.OpenAPI{
		OpenAPI: "3.1.0",
		Info: &huma.Info{
			Title:       "mailify",
			Description: "Renders MJML templates and delivers them as email.",
			Version:     s.version,
		},
		Paths: map[string]*huma.PathItem{
			"/templates/{name}": {Get: get, Post: send},
		},
		Components: &huma.Components{Schemas: registry},
	}
}

func (s *Server) openAPI(_ handler.Context, _ struct{}) handler.Response {
	return handler.Raw(s.apiDoc())
}
