package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrymomot/mailify/pkg/engine/loader/bucket"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/local"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/remote"
)

// Kind identifies an aggregate loading failure variant.
type Kind uint8

const (
	KindMultiple Kind = iota
	KindLocal
	KindRemote
	KindBucket
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindMultiple:
		return "multiple"
	case KindLocal:
		return "local"
	case KindRemote:
		return "remote"
	case KindBucket:
		return "bucket"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every aggregate loading failure variant.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

var ErrNoSources = errors.New("loader: at least one template source is required")

// Error is a template loading failure.
// Exactly one of Local, Remote and Bucket is set for the single-source kinds;
// Errs holds every cause, in source order, for KindMultiple.
type Error struct {
	Kind   Kind
	Local  *local.Error
	Remote *remote.Error
	Bucket *bucket.Error
	Errs   []error
}

// UnknownCause stands in for a nil cause in messages and details.
const UnknownCause = "unknown cause"

// CauseText returns err's message, or UnknownCause for a nil err.
func CauseText(err error) string {
	if err == nil {
		return UnknownCause
	}
	return err.Error()
}

func (e *Error) Error() string {
	if e == nil {
		return "loader: <nil>"
	}
	if cause := e.single(); cause != nil {
		return cause.Error()
	}
	if e.Kind != KindMultiple {
		return "loader: " + e.Kind.String() + ": " + UnknownCause
	}
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = CauseText(err)
	}
	return fmt.Sprintf("loader: all %d sources failed: %s", len(e.Errs), strings.Join(msgs, "; "))
}

func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	if cause := e.single(); cause != nil {
		return []error{cause}
	}
	if e.Kind != KindMultiple {
		return nil
	}
	errs := make([]error, 0, len(e.Errs))
	for _, err := range e.Errs {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// single returns the set cause of a single-source kind as an untyped error.
func (e *Error) single() error {
	switch {
	case e.Kind == KindLocal && e.Local != nil:
		return e.Local
	case e.Kind == KindRemote && e.Remote != nil:
		return e.Remote
	case e.Kind == KindBucket && e.Bucket != nil:
		return e.Bucket
	}
	return nil
}

func Multiple(errs ...error) *Error {
	return &Error{Kind: KindMultiple, Errs: errs}
}

func Local(err *local.Error) *Error {
	return &Error{Kind: KindLocal, Local: err}
}

func Remote(err *remote.Error) *Error {
	return &Error{Kind: KindRemote, Remote: err}
}

func Bucket(err *bucket.Error) *Error {
	return &Error{Kind: KindBucket, Bucket: err}
}

// Wrap attributes a single source failure to its domain. Failures of
// unknown sources are reported as a one-element Multiple.
func Wrap(err error) *Error {
	var (
		lerr *local.Error
		rerr *remote.Error
		berr *bucket.Error
		agg  *Error
	)
	switch {
	case errors.As(err, &agg):
		return agg
	case errors.As(err, &lerr):
		return Local(lerr)
	case errors.As(err, &rerr):
		return Remote(rerr)
	case errors.As(err, &berr):
		return Bucket(berr)
	}
	return Multiple(err)
}
