// Package clientip resolves the address of the client behind a request.
//
// By default only the connection's remote address is trusted. When mailify
// runs behind a reverse proxy, name the headers that proxy sets:
//
//	r.Use(clientip.Middleware(clientip.ProxyHeaders...))
//
// The address is then available through FromContext and, with
// LoggerExtractor, on every log record of the request.
package clientip
