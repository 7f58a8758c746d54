package engine

import (
	"fmt"
	"strconv"

	"github.com/dmitrymomot/mailify/pkg/engine/loader"
	"github.com/dmitrymomot/mailify/pkg/engine/parser"
	"github.com/dmitrymomot/mailify/pkg/engine/render"
	"github.com/dmitrymomot/mailify/pkg/message"
)

// Kind identifies the pipeline stage that failed.
type Kind uint8

const (
	KindBuilding Kind = iota
	KindInterpolation
	KindLoading
	KindParsing
	KindRendering
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindBuilding:
		return "building"
	case KindInterpolation:
		return "interpolation"
	case KindLoading:
		return "loading"
	case KindParsing:
		return "parsing"
	case KindRendering:
		return "rendering"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every engine failure variant.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Error is a failure to produce a message from a template.
// The field matching Kind holds the cause.
type Error struct {
	Kind          Kind
	Building      *message.Error
	Interpolation error
	Loading       *loader.Error
	Parsing       *parser.Error
	Rendering     *render.Error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Kind, e.Unwrap())
}

// Unwrap returns the cause, or nil when the field matching Kind is unset.
func (e *Error) Unwrap() error {
	switch {
	case e.Kind == KindBuilding && e.Building != nil:
		return e.Building
	case e.Kind == KindInterpolation:
		return e.Interpolation
	case e.Kind == KindLoading && e.Loading != nil:
		return e.Loading
	case e.Kind == KindParsing && e.Parsing != nil:
		return e.Parsing
	case e.Kind == KindRendering && e.Rendering != nil:
		return e.Rendering
	}
	return nil
}

func Building(err *message.Error) *Error {
	return &Error{Kind: KindBuilding, Building: err}
}

func Interpolation(err error) *Error {
	return &Error{Kind: KindInterpolation, Interpolation: err}
}

func Loading(err *loader.Error) *Error {
	return &Error{Kind: KindLoading, Loading: err}
}

func Parsing(err *parser.Error) *Error {
	return &Error{Kind: KindParsing, Parsing: err}
}

func Rendering(err *render.Error) *Error {
	return &Error{Kind: KindRendering, Rendering: err}
}
