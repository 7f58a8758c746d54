// Package source defines the template model shared by every template source
// (local directory, HTTP server, S3 bucket) and the aggregate loader.
package source

import (
	"context"
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known file names inside a template directory.
const (
	TemplateFile = "template.mjml"
	MetadataFile = "metadata.json"
)

// MetadataFiles lists metadata file names in lookup order.
// YAML is a superset of JSON, so one decoder handles all of them.
var MetadataFiles = []string{MetadataFile, "metadata.yaml", "metadata.yml"}

var (
	ErrInvalidName     = errors.New("invalid template name")
	ErrEmptyMetadata   = errors.New("metadata document is empty")
	ErrResourceMissing = errors.New("resource not found")
)

// Metadata describes a template.
type Metadata struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description"`
	Subject     string         `json:"subject" yaml:"subject"`
	Attributes  map[string]any `json:"attributes,omitempty" yaml:"attributes"`
}

// Template is a loaded template: its metadata and raw MJML source.
type Template struct {
	Name     string
	Metadata Metadata
	Content  string
}

// Source provides templates by name.
type Source interface {
	// Find loads a template with its metadata.
	Find(ctx context.Context, name string) (*Template, error)
	// Metadata loads only the metadata of a template.
	Metadata(ctx context.Context, name string) (*Metadata, error)
	// Partial loads a shared template fragment referenced by mj-include.
	Partial(ctx context.Context, path string) (string, error)
}

// DecodeMetadata decodes a JSON or YAML metadata document.
// An empty name is filled with fallback.
func DecodeMetadata(data []byte, fallback string) (*Metadata, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyMetadata
	}
	var md Metadata
	if err := yaml.Unmarshal(data, &md); err != nil {
		return nil, err
	}
	if md.Name == "" {
		md.Name = fallback
	}
	return &md, nil
}

// ValidName reports whether name is usable as a single path segment.
func ValidName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

// ValidPartial reports whether path is a relative, slash-separated path
// without parent references.
func ValidPartial(path string) bool {
	if path == "" || strings.HasPrefix(path, "/") || strings.ContainsAny(path, "\\\x00") {
		return false
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
