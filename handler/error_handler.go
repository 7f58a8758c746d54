package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mailify/binder"
	"github.com/dmitrymomot/mailify/pkg/apierror"
	"github.com/dmitrymomot/mailify/pkg/logger"
)

// Helper functions for HTTP status code classification
func isClientError(statusCode int) bool {
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

// determineLogLevel maps HTTP status codes to appropriate log levels
func determineLogLevel(statusCode int) slog.Level {
	if isClientError(statusCode) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// classifyError resolves err into the public error record.
// Binding failures are the caller's fault; everything else is delegated
// to the domain translators.
func classifyError(ctx Context, log *slog.Logger, err error) apierror.Record {
	if isBindError(err) {
		return apierror.InvalidRequestBody(err)
	}
	return apierror.FromError(ctx, log, err)
}

func isBindError(err error) bool {
	return errors.Is(err, binder.ErrUnsupportedMediaType) ||
		errors.Is(err, binder.ErrMissingContentType) ||
		errors.Is(err, binder.ErrFailedToParseJSON) ||
		errors.Is(err, binder.ErrFailedToParsePath)
}

// requestLogger scopes log to the failed request.
func requestLogger(log *slog.Logger, ctx Context) *slog.Logger {
	return log.With(
		logger.RequestID(ctx.RequestID()),
		slog.String("method", ctx.Request().Method),
		slog.String("path", ctx.Request().URL.Path),
	)
}

// logError logs a failed request unless the translator already did.
func logError(log *slog.Logger, ctx Context, err error, rec apierror.Record) {
	if rec.Logged() {
		return
	}
	log.LogAttrs(ctx, determineLogLevel(rec.Status), "request error",
		logger.Error(err),
		logger.Errors(causes(err)...),
		logger.StatusCode(rec.Status),
		logger.Code(rec.Code),
		logger.Component("error_handler"),
	)
}

// causes returns the individual failures of the first aggregate error in
// err's chain, such as every source tried by a template loader.
func causes(err error) []error {
	for err != nil {
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			if errs := multi.Unwrap(); len(errs) > 1 {
				return errs
			}
		}
		err = errors.Unwrap(err)
	}
	return nil
}

// NewErrorHandler creates the error handler shared by every route.
// It writes an apierror.Record for any error and logs the failure once.
// Configure this once in main.go and pass it to all handlers.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}

	return func(ctx Context, err error) {
		reqLog := requestLogger(log, ctx)
		rec := classifyError(ctx, reqLog, err)
		logError(reqLog, ctx, err, rec)

		if renderErr := rec.Render(ctx.ResponseWriter(), ctx.Request()); renderErr != nil {
			reqLog.LogAttrs(ctx, slog.LevelError, "failed to render error response",
				logger.Error(renderErr),
				logger.Event("render_error_record"),
			)
		}
	}
}

// errorResponse defers an error to the configured error handler.
type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error returns a Response that hands err to the error handler instead of
// writing anything itself.
//
// Example:
//
//	msg, err := eng.Render(ctx, req)
//	if err != nil {
//		return handler.Error(err)
//	}
func Error(err error) Response {
	if err == nil {
		err = ErrNilResponse
	}
	return errorResponse{err: err}
}
