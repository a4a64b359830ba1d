// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
This handler sits high in the chain, before the rate limiter and the
intake handler.  For every request it:

  1. Assigns a request id (the inbound X-Request-Id when it parses as a
     UUID, otherwise a fresh one) and echoes it on the response.
  2. Parses the User-Agent header and Accept-Language list.
  3. Resolves the client IP and runs the optional GeoLite2 lookup.  The
     peer address (`r.RemoteAddr`) is used unless the peer is a trusted
     proxy; only then are X-Forwarded-For and X-Real-IP read, taking the
     right-most hop that is not itself a trusted proxy.
  4. Stores the `*RequestInfo` in the request context, plus a child
     logger carrying request_id, ip, and device (see internal/logger).

Notes
-----
  • All look-ups are read-only, so the middleware is safe under heavy
    concurrency.
  • Oxford commas, two spaces after periods.  No em dash.
*/
package requestinfo

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/propertysite/internal/logger"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich is EnrichWith(nil): forwarding headers are never believed.
func Enrich(next http.Handler) http.Handler { return EnrichWith(nil)(next) }

// EnrichWith returns middleware that attaches *RequestInfo, reading
// forwarding headers only from peers in trusted.
func EnrichWith(trusted Proxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trusted)

			info := &RequestInfo{
				ID:        requestID(r),
				UA:        parseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
				Geo:       lookupGeo(ip),
				Timestamp: time.Now().UTC(),
			}
			w.Header().Set(HeaderRequestID, info.ID)

			l := zap.S().With(
				"request_id", info.ID,
				"ip", info.Geo.IP,
				"device", info.UA.Device,
			)
			l.Debugw("request info",
				"country", info.Geo.CountryISO,
				"city", info.Geo.City,
				"browser", info.UA.Browser,
				"bot", info.UA.IsBot,
				"path", r.URL.Path,
			)

			ctx := WithInfo(r.Context(), info)
			ctx = logger.WithContext(ctx, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestID(r *http.Request) string {
	if id, err := uuid.Parse(strings.TrimSpace(r.Header.Get(HeaderRequestID))); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// Proxies lists the networks whose forwarding headers are believed.
type Proxies []*net.IPNet

// ParseProxies accepts bare addresses and CIDR ranges.
func ParseProxies(list []string) (Proxies, error) {
	out := make(Proxies, 0, len(list))
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q: not an IP address", raw)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (p Proxies) trusts(ip net.IP) bool {
	for _, n := range p {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address Enrich resolved for r.  Outside Enrich it
// is the peer address.  "" when unknown.
func ClientIP(r *http.Request) string {
	if info := FromContext(r.Context()); info != nil && info.Geo.IP != "" {
		return info.Geo.IP
	}
	if ip := peerIP(r); ip != nil {
		return ip.String()
	}
	return ""
}

// clientIP returns the peer address unless the peer is trusted.  Behind a
// trusted proxy it walks X-Forwarded-For from the right and returns the
// first hop that is not trusted, then tries X-Real-IP.
func clientIP(r *http.Request, trusted Proxies) net.IP {
	peer := peerIP(r)
	if peer == nil || !trusted.trusts(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		var leftmost net.IP
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				continue
			}
			if !trusted.trusts(ip) {
				return ip
			}
			leftmost = ip
		}
		if leftmost != nil {
			return leftmost
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-Ip"))); ip != nil {
		return ip
	}
	return peer
}

// peerIP parses r.RemoteAddr ("ip:port" or a bare ip).
func peerIP(r *http.Request) net.IP {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
