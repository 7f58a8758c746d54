// Package requestid correlates the log records of one API request.
//
// Middleware reuses a valid X-Request-ID header sent by the client or
// generates a UUID, stores it in the request context and echoes it in the
// response header. FromContext reads it back; LoggerExtractor adds it to every
// record of a logger built with logger.WithContextExtractors.
//
// Client-supplied ids longer than 128 characters or containing anything but
// letters, digits, '-' and '_' are replaced.
package requestid
