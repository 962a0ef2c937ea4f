package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the client IP address from the request.
// When trustProxy is true the standard Forwarded header (RFC 7239), then
// X-Forwarded-For (first entry), then X-Real-IP are checked before falling
// back to RemoteAddr. Only enable trustProxy when the server sits behind a
// trusted reverse proxy; otherwise clients can spoof their address.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("Forwarded"); fwd != "" {
			if ip := parseForwardedFor(fwd); ip != "" {
				return ip
			}
		}
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// The leftmost entry is the original client.
			if i := strings.IndexByte(xff, ','); i > 0 {
				xff = xff[:i]
			}
			if ip := strings.TrimSpace(xff); ip != "" {
				return ip
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseForwardedFor pulls the for= value from the first element of an
// RFC 7239 Forwarded header, stripping quotes, brackets, and any port.
func parseForwardedFor(header string) string {
	first := header
	if i := strings.IndexByte(first, ','); i > 0 {
		first = first[:i]
	}
	for _, part := range strings.Split(first, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || !strings.EqualFold(k, "for") {
			continue
		}
		v = strings.Trim(v, `"`)
		if strings.HasPrefix(v, "[") {
			// Bracketed IPv6, possibly with port.
			if end := strings.IndexByte(v, ']'); end > 0 {
				return v[1:end]
			}
			return ""
		}
		if host, _, err := net.SplitHostPort(v); err == nil {
			return host
		}
		return v
	}
	return ""
}
