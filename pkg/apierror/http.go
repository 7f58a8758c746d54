package apierror

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// InvalidRequestBody reports a request that could not be decoded.
func InvalidRequestBody(err error) Record {
	return newRecord(http.StatusBadRequest, CodeInvalidRequestBody, cause(err)...)
}

// RouteNotFound reports an unknown path.
func RouteNotFound() Record {
	return newRecord(http.StatusNotFound, CodeRouteNotFound)
}

// MethodNotAllowed reports a known path requested with the wrong method.
func MethodNotAllowed() Record {
	return newRecord(http.StatusMethodNotAllowed, CodeMethodNotAllowed)
}

// Internal reports a failure that has no public translation.
// It never carries details.
func Internal() Record {
	return newRecord(http.StatusInternalServerError, CodeInternal)
}

// FromError resolves any error reaching the HTTP boundary: a Record is
// returned as is, handler failures are translated by origin, and anything
// else becomes Internal.
func FromError(ctx context.Context, log *slog.Logger, err error) Record {
	var rec Record
	if errors.As(err, &rec) {
		return rec
	}
	if se, ok := Wrap(err); ok {
		return se.Record(ctx, log)
	}
	return Internal()
}
