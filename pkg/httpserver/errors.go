package httpserver

import "errors"

var (
	// ErrStart wraps every failure that keeps Run from serving.
	ErrStart = errors.New("httpserver: cannot serve the API")
	// ErrShutdown wraps a drain that did not finish within the shutdown timeout.
	ErrShutdown = errors.New("httpserver: in-flight requests not drained")
	// ErrAlreadyRunning is returned, joined with ErrStart, by a second Run.
	ErrAlreadyRunning = errors.New("httpserver: already running")
)
