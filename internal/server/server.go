// Package server exposes the template engine and a mail transport over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/mailify/binder"
	"github.com/dmitrymomot/mailify/handler"
	"github.com/dmitrymomot/mailify/pkg/apierror"
	"github.com/dmitrymomot/mailify/pkg/clientip"
	"github.com/dmitrymomot/mailify/pkg/engine"
	"github.com/dmitrymomot/mailify/pkg/engine/source"
	"github.com/dmitrymomot/mailify/pkg/httpserver"
	"github.com/dmitrymomot/mailify/pkg/logger"
	"github.com/dmitrymomot/mailify/pkg/message"
	"github.com/dmitrymomot/mailify/pkg/requestid"
	"github.com/dmitrymomot/mailify/pkg/transport"
)

// Renderer produces messages from templates. *engine.Engine implements it.
type Renderer interface {
	Render(ctx context.Context, req engine.Request) (*message.Message, error)
	Metadata(ctx context.Context, name string) (*source.Metadata, error)
}

// Server routes API requests to the renderer and the sender.
type Server struct {
	renderer Renderer
	sender   transport.Sender
	log      *slog.Logger
	version  string
	maxBody  int64
	proxies  []string
	onError  handler.ErrorHandler[handler.Context]
	apiDoc   func() *huma.OpenAPI
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. A nil logger discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithVersion sets the version published in the API description.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// WithMaxBodySize limits the size of a send request body.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithProxyHeaders names the headers a trusted reverse proxy sets with the
// client address. Without them the connection address is logged.
func WithProxyHeaders(headers ...string) Option {
	return func(s *Server) {
		s.proxies = append(s.proxies, headers...)
	}
}

// New creates a Server.
func New(r Renderer, sender transport.Sender, opts ...Option) *Server {
	s := &Server{
		renderer: r,
		sender:   sender,
		log:      logger.Discard(),
		version:  "dev",
		maxBody:  binder.DefaultMaxJSONSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.onError = handler.NewErrorHandler(s.log)
	s.apiDoc = sync.OnceValue(s.describe)
	return s
}

// Routes returns the HTTP handler serving the API.
//
//	POST /templates/{name}  render and send, 204 on success
//	GET  /templates/{name}  template metadata
//	GET  /openapi.json      API description
//	GET  /health            liveness probe
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware(s.proxies...), s.recoverer)

	r.NotFound(s.record(apierror.RouteNotFound()))
	r.MethodNotAllowed(s.record(apierror.MethodNotAllowed()))

	r.Get("/health", httpserver.HealthCheckHandler(s.log))
	r.Get("/openapi.json", handler.Wrap(s.openAPI,
		handler.WithErrorHandler[handler.Context, struct{}](s.onError),
	))

	r.Get("/templates/{name}", handler.Wrap(s.metadata,
		handler.WithBinder[handler.Context, MetadataRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, MetadataRequest](s.onError),
	))
	r.Post("/templates/{name}", handler.Wrap(s.send,
		handler.WithBinders[handler.Context, SendRequest](
			binder.Path(chi.URLParam),
			binder.JSON(binder.WithMaxSize(s.maxBody)),
		),
		handler.WithErrorHandler[handler.Context, SendRequest](s.onError),
	))

	return r
}

// record serves a fixed error record through the error handler so the
// failure is logged like any other.
func (s *Server) record(rec apierror.Record) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.onError(handler.NewContext(w, r), rec)
	}
}

// recoverer turns a panic into an internal error record. The panic is logged
// here with its stack; nothing is written when the handler already started
// its response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			err, ok := v.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", v)
			}
			s.log.ErrorContext(r.Context(), "recovered from panic",
				logger.RequestID(requestid.FromContext(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				logger.Group("panic",
					logger.Error(err),
					slog.String("stack", string(debug.Stack())),
				),
				logger.Component("server"),
			)
			if ww.Status() != 0 {
				return
			}
			if rerr := apierror.Internal().Render(ww, r); rerr != nil {
				s.log.ErrorContext(r.Context(), "failed to render error response",
					logger.RequestID(requestid.FromContext(r.Context())),
					logger.Error(rerr),
					logger.Component("server"),
				)
			}
		}()
		next.ServeHTTP(ww, r)
	})
}
