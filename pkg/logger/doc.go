// Package logger builds the slog loggers used across mailify.
//
// New creates a *slog.Logger from Option values:
//
//   - WithEnvironment picks format and level per deployment stage and tags
//     every record with the service name and env.
//   - WithLevel and WithFormat override the preset.
//   - WithAttr attaches static attributes.
//   - WithContextExtractors injects attributes pulled from the context on
//     every record, such as the request id.
//
// Attribute helpers (Error, RequestID, Template, Code, ...) keep key names
// consistent. Error and Errors return an empty attribute for a nil error, so
// they can be passed unconditionally.
//
// Usage:
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "mailify"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "message sent", logger.Template("welcome"))
//
// Discard returns a logger that drops every record; components fall back to
// it when no logger is supplied.
package logger
