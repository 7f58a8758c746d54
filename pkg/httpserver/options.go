package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures the HTTP server. Invalid values panic at construction,
// since options are built once at startup.
type Option func(*config)

func mustPositive[T time.Duration | int](name string, v T) {
	if v <= 0 {
		panic("httpserver: " + name + " must be positive")
	}
}

func mustSet[T any](name string, v *T) {
	if v == nil {
		panic("httpserver: " + name + " is nil")
	}
}

// WithAddr sets the listen address, e.g. ":8080".
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: addr is empty")
	}
	return func(c *config) { c.addr = addr }
}

func WithReadTimeout(d time.Duration) Option {
	mustPositive("read timeout", d)
	return func(c *config) { c.readTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	mustPositive("write timeout", d)
	return func(c *config) { c.writeTimeout = d }
}

func WithIdleTimeout(d time.Duration) Option {
	mustPositive("idle timeout", d)
	return func(c *config) { c.idleTimeout = d }
}

// WithShutdownTimeout bounds how long in-flight sends may take to finish.
func WithShutdownTimeout(d time.Duration) Option {
	mustPositive("shutdown timeout", d)
	return func(c *config) { c.shutdownTimeout = d }
}

// WithMaxHeaderBytes limits the size of request headers.
func WithMaxHeaderBytes(n int) Option {
	mustPositive("max header bytes", n)
	return func(c *config) { c.maxHeaderBytes = n }
}

// WithServer serves through srv. Fields already set on srv win over options.
func WithServer(srv *http.Server) Option {
	mustSet("server", srv)
	return func(c *config) { c.server = srv }
}

// WithLogger sets the life-cycle logger, also handed to hooks.
// A nil logger discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStartHook runs h once the listener accepts connections.
func WithStartHook(h func(*slog.Logger)) Option {
	if h == nil {
		panic("httpserver: start hook is nil")
	}
	return func(c *config) { c.startHooks = append(c.startHooks, h) }
}

// WithStopHook runs h after in-flight requests are drained.
func WithStopHook(h func(*slog.Logger)) Option {
	if h == nil {
		panic("httpserver: stop hook is nil")
	}
	return func(c *config) { c.stopHooks = append(c.stopHooks, h) }
}
