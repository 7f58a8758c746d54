package clientip

import (
	"net"
	"net/http"
	"strings"
)

// ProxyHeaders are the headers set by common reverse proxies, in the order
// they are usually trusted.
var ProxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// FromRequest returns the client address of r. The given headers are
// consulted in order and the first valid address wins; for X-Forwarded-For
// that is its first valid entry. Without a usable header the connection's
// remote address is used. The result is "" when nothing parses.
//
// Only pass headers that a trusted proxy in front of the service overwrites.
func FromRequest(r *http.Request, headers ...string) string {
	for _, h := range headers {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		for candidate := range strings.SplitSeq(v, ",") {
			if ip := parseIP(candidate); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP returns the normalized form of s, or "" if s is not an IP.
func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
