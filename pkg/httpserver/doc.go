// Package httpserver runs the mailify HTTP API with graceful shutdown.
//
// Server wraps http.Server and adds:
//
//   - Graceful shutdown. Run blocks until the context is cancelled or an
//     interrupt/TERM signal arrives, then drains in-flight requests within
//     the configured shutdown timeout.
//   - Functional options. New and NewFromConfig accept Option values such as
//     WithAddr, WithReadTimeout and WithLogger. Config carries the same
//     settings as env tags for pkg/config.
//   - Hooks. WithStartHook and WithStopHook run around the server life-cycle.
//   - Health checks. HealthCheckHandler serves liveness and readiness probes.
package httpserver
