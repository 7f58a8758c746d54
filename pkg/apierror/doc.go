// Package apierror converts failures of the rendering and delivery pipeline
// into the service's public error contract.
//
// Every failure domain (template sources, parser, renderer, message builder,
// transport) has one translator that maps each of its variants to a Record:
// an HTTP status, a stable machine-readable Code, a short Title and optional
// Details. Codes are part of the public API and never change meaning once
// published.
//
// # Usage
//
//	msg, err := eng.Render(ctx, req)
//	if err != nil {
//		if se, ok := apierror.Wrap(err); ok {
//			return se.Record(ctx, log)
//		}
//		return apierror.Internal()
//	}
//
// Record implements the handler Response contract, so it can be returned
// directly from a typed handler. The wire shape is:
//
//	{"code":"template-missing-root","title":"unable to decode template, no root component"}
//
// with "details" present only when non-empty. Schema describes the same shape
// for the published API description under the name ServerError.
//
// Translators are pure with one exception: FromTransport logs the full
// transport failure before reducing it to the public record, because its
// cause is opaque to the caller. Pass a nil logger to disable that.
package apierror
