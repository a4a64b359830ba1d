//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, IP + geolocation, and timestamp).  These
//  structs are inert.  They contain no pointers to handles or large
//  buffers, so they are safe to log next to a lead.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Browser     string // "Chrome", "Firefox", "Safari", etc.
	Version     string // "124.0.6367"
	OS          string // "MacOSX", "Windows", "Android", "iOS", etc.
	Device      string // "Desktop", "Mobile", "Tablet", "Bot", "Other"
	IsBot       bool
	PrimaryLang string // First tag from Accept-Language ("en", "hi", ...)
}

// Geo holds IP-based geolocation hints.  Best-effort; empty when no
// database is loaded or the address has no match.
type Geo struct {
	IP         string
	CountryISO string
	City       string
}

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	ID        string
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is the optional MaxMind handle.  Safe for concurrent reads.
var geoReader atomic.Pointer[geoip2.Reader]

// InitGeo opens the GeoLite2-City database.  An empty path leaves lookups
// disabled.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	if old := geoReader.Swap(r); old != nil {
		_ = old.Close()
	}
	return nil
}

// CloseGeo releases the database, if any.
func CloseGeo() {
	if r := geoReader.Swap(nil); r != nil {
		_ = r.Close()
	}
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer stored by Enrich, or nil.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// WithInfo returns a copy of ctx carrying info.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(uaHeader, acceptLang string) UA {
	u := surfer.Parse(uaHeader)

	info := UA{
		Browser:     strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:     versionString(u.Browser.Version),
		OS:          strings.TrimPrefix(u.OS.Name.String(), "OS"),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		info.Device = "Desktop"
	case surfer.DeviceTablet:
		info.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}
	if info.IsBot {
		info.Device = "Bot"
	}
	return info
}

// versionString renders a version in dotted form while trimming trailing
// zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionString(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	case v.Minor != 0:
		return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
	default:
		return strconv.Itoa(v.Major)
	}
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(strings.TrimSpace(tag), ";")
	return strings.ToLower(tag)
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip net.IP) Geo {
	g := Geo{}
	if ip == nil {
		return g
	}
	g.IP = ip.String()
	r := geoReader.Load()
	if r == nil {
		return g
	}
	rec, err := r.City(ip)
	if err != nil {
		return g
	}
	g.CountryISO = rec.Country.IsoCode
	g.City = rec.City.Names["en"]
	return g
}
