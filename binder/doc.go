// Package binder decodes HTTP requests into handler request structs.
//
// Two binders are provided:
//
//   - JSON(): strict JSON body decoding with a size limit
//   - Path(extractor): URL path parameters through a router-specific extractor
//
// Binders are applied in order by handler.Wrap; a binder returning
// ErrBinderNotApplicable is skipped. Every other failure wraps one of the
// package errors so the error handler can report it as an invalid request:
//
//   - ErrUnsupportedMediaType: Content-Type is not application/json
//   - ErrMissingContentType: Content-Type header is absent
//   - ErrFailedToParseJSON: body is malformed, too large or has unknown fields
//   - ErrFailedToParsePath: a path parameter cannot be converted to its field type
package binder
