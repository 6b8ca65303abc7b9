package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ExtractIP returns the client IP address from the request. It checks
// X-Forwarded-For first (taking the first IP if comma-separated), then
// X-Real-IP, and finally RemoteAddr. Returns the IP without port.
//
// These headers are trusted, so the service must sit behind a reverse proxy
// that sets them correctly; exposed directly, clients could spoof them to
// bypass rate limiting.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "IP:port", extract just the IP.
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
