// Package loader combines template sources into one. Sources are tried in
// order and the first success wins.
package loader

import (
	"context"

	"github.com/dmitrymomot/mailify/pkg/engine/source"
)

// Loader tries each configured source in turn.
type Loader struct {
	sources []source.Source
}

var _ source.Source = (*Loader)(nil)

// New returns a loader over sources, skipping nil entries.
func New(sources ...source.Source) (*Loader, error) {
	l := &Loader{}
	for _, s := range sources {
		if s != nil {
			l.sources = append(l.sources, s)
		}
	}
	if len(l.sources) == 0 {
		return nil, ErrNoSources
	}
	return l, nil
}

// Find returns the template from the first source that has it.
// Failures are always *Error.
func (l *Loader) Find(ctx context.Context, name string) (*source.Template, error) {
	return try(ctx, l.sources, func(s source.Source) (*source.Template, error) {
		return s.Find(ctx, name)
	})
}

// Metadata returns the metadata from the first source that has it.
// Failures are always *Error.
func (l *Loader) Metadata(ctx context.Context, name string) (*source.Metadata, error) {
	return try(ctx, l.sources, func(s source.Source) (*source.Metadata, error) {
		return s.Metadata(ctx, name)
	})
}

// Partial returns the partial from the first source that has it.
// Failures are always *Error.
func (l *Loader) Partial(ctx context.Context, path string) (string, error) {
	return try(ctx, l.sources, func(s source.Source) (string, error) {
		return s.Partial(ctx, path)
	})
}

func try[T any](ctx context.Context, sources []source.Source, fn func(source.Source) (T, error)) (T, error) {
	var (
		zero T
		errs []error
	)
	for _, s := range sources {
		v, err := fn(s)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 1 {
		return zero, Wrap(errs[0])
	}
	return zero, Multiple(errs...)
}
