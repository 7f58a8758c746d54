package parser

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind identifies a parser failure variant.
type Kind uint8

const (
	KindEndOfStream Kind = iota
	KindSizeLimit
	KindNoRootNode
	KindUnexpectedToken
	KindIncludeLoader
	KindInvalidAttribute
	KindInvalidFormat
	KindMissingAttribute
	KindSyntax
	KindUnexpectedAttribute
	KindUnexpectedElement
	kindCount
)

var kindNames = [kindCount]string{
	KindEndOfStream:         "end_of_stream",
	KindSizeLimit:           "size_limit",
	KindNoRootNode:          "no_root_node",
	KindUnexpectedToken:     "unexpected_token",
	KindIncludeLoader:       "include_loader",
	KindInvalidAttribute:    "invalid_attribute",
	KindInvalidFormat:       "invalid_format",
	KindMissingAttribute:    "missing_attribute",
	KindSyntax:              "syntax",
	KindUnexpectedAttribute: "unexpected_attribute",
	KindUnexpectedElement:   "unexpected_element",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every parser failure variant.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Construction errors used as causes of include failures.
var (
	ErrNoIncluder   = errors.New("template includes are not supported by this parser")
	ErrIncludeDepth = errors.New("template include depth exceeded")
)

// Error is a template parsing failure.
// Span is set for position-addressable kinds, Attribute for KindMissingAttribute,
// Path for KindIncludeLoader, and Err for KindIncludeLoader and KindSyntax.
type Error struct {
	Kind      Kind
	Span      Span
	Attribute string
	Path      string
	Err       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEndOfStream:
		return "parser: reached the end of the template early"
	case KindSizeLimit:
		return "parser: template exceeds the size limit"
	case KindNoRootNode:
		return "parser: template has no mjml root element"
	case KindIncludeLoader:
		return fmt.Sprintf("parser: unable to include %q: %v", e.Path, e.Err)
	case KindMissingAttribute:
		return fmt.Sprintf("parser: missing attribute %q at %s", e.Attribute, e.Span)
	case KindSyntax:
		return fmt.Sprintf("parser: %v", e.Err)
	default:
		return fmt.Sprintf("parser: %s at %s", e.Kind, e.Span)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func EndOfStream() *Error { return &Error{Kind: KindEndOfStream} }

func SizeLimit() *Error { return &Error{Kind: KindSizeLimit} }

func NoRootNode() *Error { return &Error{Kind: KindNoRootNode} }

func UnexpectedToken(span Span) *Error {
	return &Error{Kind: KindUnexpectedToken, Span: span}
}

func IncludeLoader(path string, err error) *Error {
	return &Error{Kind: KindIncludeLoader, Path: path, Err: err}
}

func InvalidAttribute(span Span) *Error {
	return &Error{Kind: KindInvalidAttribute, Span: span}
}

func InvalidFormat(span Span) *Error {
	return &Error{Kind: KindInvalidFormat, Span: span}
}

func MissingAttribute(name string, span Span) *Error {
	return &Error{Kind: KindMissingAttribute, Attribute: name, Span: span}
}

// Syntax wraps a failure reported by the underlying XML decoder.
func Syntax(err error) *Error {
	return &Error{Kind: KindSyntax, Err: err}
}

func UnexpectedAttribute(span Span) *Error {
	return &Error{Kind: KindUnexpectedAttribute, Span: span}
}

func UnexpectedElement(span Span) *Error {
	return &Error{Kind: KindUnexpectedElement, Span: span}
}
