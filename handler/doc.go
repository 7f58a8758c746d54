// Package handler provides type-safe HTTP request handling for the mailify API.
//
// Handlers are generic functions that receive a bound request struct and return
// a Response. Binding, rendering and error reporting are handled by Wrap:
//
//	type SendRequest struct {
//		Name string   `path:"name" json:"-"`
//		To   []string `json:"to"`
//	}
//
//	func send(ctx handler.Context, req SendRequest) handler.Response {
//		if err := svc.Send(ctx, req); err != nil {
//			return handler.Error(err)
//		}
//		return handler.Empty()
//	}
//
//	r.Post("/templates/{name}", handler.Wrap(send,
//		handler.WithBinders[handler.Context, SendRequest](
//			binder.Path(chi.URLParam),
//			binder.JSON(),
//		),
//		handler.WithErrorHandler[handler.Context, SendRequest](handler.NewErrorHandler(log)),
//	))
//
// # Responses
//
//	handler.JSON(data)                       // 200 with {"data": ...}
//	handler.JSON(data, WithJSONStatus(201))  // custom status
//	handler.Raw(doc)                         // bare JSON document
//	handler.Empty()                          // 204 No Content
//	handler.Error(err)                       // routed to the error handler
//
// # Errors
//
// Every error, whether from a binder, a handler or a failed render, reaches the
// ErrorHandler. NewErrorHandler translates it into an apierror.Record, logs the
// failure once (4xx at WARN, 5xx at ERROR) and writes the record as the
// response body.
//
// # Context
//
// Context extends context.Context with HTTP accessors:
//
//	ctx.Request()         // *http.Request
//	ctx.ResponseWriter()  // http.ResponseWriter
//	ctx.RequestID()       // id assigned by requestid.Middleware
package handler
