package local

import (
	"fmt"
	"strconv"
)

// Kind identifies a local loading failure variant.
type Kind uint8

const (
	KindTemplateOpenFailed Kind = iota
	KindMetadataOpenFailed
	KindMetadataFormatInvalid
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindTemplateOpenFailed:
		return "template_open_failed"
	case KindMetadataOpenFailed:
		return "metadata_open_failed"
	case KindMetadataFormatInvalid:
		return "metadata_format_invalid"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every local loading failure variant.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Error is a failure to read a template from the local directory.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMetadataOpenFailed:
		return fmt.Sprintf("local: open metadata %s: %v", e.Path, e.Err)
	case KindMetadataFormatInvalid:
		return fmt.Sprintf("local: decode metadata %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("local: open template %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func TemplateOpenFailed(path string, err error) *Error {
	return &Error{Kind: KindTemplateOpenFailed, Path: path, Err: err}
}

func MetadataOpenFailed(path string, err error) *Error {
	return &Error{Kind: KindMetadataOpenFailed, Path: path, Err: err}
}

func MetadataFormatInvalid(path string, err error) *Error {
	return &Error{Kind: KindMetadataFormatInvalid, Path: path, Err: err}
}
