// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ForceHTTPS wraps h.  When enabled and the request arrived over plain HTTP
// for a host other than localhost, the wrapper issues a 308 Permanent
// Redirect to the HTTPS version of the same URL.  A TLS-terminating proxy
// is recognised through X-Forwarded-Proto.
func ForceHTTPS(enabled bool, h http.Handler) http.Handler {
	if !enabled {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Already HTTPS or dev host → continue.
		if r.TLS != nil || isLocal(stripPort(r.Host)) ||
			strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
			h.ServeHTTP(w, r)
			return
		}

		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

func isLocal(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}
