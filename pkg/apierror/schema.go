package apierror

import (
	"github.com/danielgtaylor/huma/v2"
)

// SchemaName is the public name of the error object in the API description.
// It is chosen independently of the Go type name.
const SchemaName = "ServerError"

// Schema describes the wire shape of a Record.
func Schema() *huma.Schema {
	enum := make([]any, len(codes))
	for i, c := range codes {
		enum[i] = string(c)
	}

	return &huma.Schema{
		Type:        huma.TypeObject,
		Description: "Error returned by every failed request. The HTTP status is carried by the status line.",
		Properties: map[string]*huma.Schema{
			"code": {
				Type:        huma.TypeString,
				Description: "Stable machine-readable error code.",
				Enum:        enum,
			},
			"title": {
				Type:        huma.TypeString,
				Description: "Short human-readable summary.",
			},
			"details": {
				Type:        huma.TypeArray,
				Description: "Diagnostic messages, omitted when empty.",
				Items:       &huma.Schema{Type: huma.TypeString},
			},
		},
		Required:             []string{"code", "title"},
		AdditionalProperties: false,
	}
}

// Register adds the error schema to registry under SchemaName and returns a
// reference schema pointing at it.
func Register(registry huma.Registry) *huma.Schema {
	registry.Map()[SchemaName] = Schema()
	return &huma.Schema{Ref: "#/components/schemas/" + SchemaName}
}
