// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from its overlay layers:
//
//   • optional `.env`                                – dotenv values,
//   • optional `conf/global.yaml`                    – primary static file,
//   • legacy flat variables (GOOGLE_SHEET_ID, …)     – deployments of the old site,
//   • `PROPERTYSITE_`-prefixed environment overrides – highest precedence.
//
// A value whose string begins with `vault:` is resolved through the Vault
// client by ResolveSecrets, after Load, so the rest of the program only
// ever sees plain strings.
//
// Validation happens immediately after unmarshal.  Spreadsheet settings
// carry no `required` tags: a site without them still serves pages and the
// intake endpoint reports the gap per request.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
	// RateLimit is intake requests per minute per client IP.  0 disables.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int     `koanf:"rate_burst" validate:"gte=0"`
	// BodyLimit caps intake request bodies, in bytes.
	BodyLimit int64 `koanf:"body_limit" validate:"gte=0"`
	// TrustedProxies are addresses or CIDR ranges whose X-Forwarded-For
	// is believed.  Empty means the peer address is the client.
	TrustedProxies []string `koanf:"trusted_proxies" validate:"dive,cidr|ip"`
}

//
// Sheets section
//

// Sheets holds the lead spreadsheet settings.
//
// CredentialsB64 is a base64-encoded service account JSON key, or a
// `vault:<mount>/<path>#<key>` reference to one.
type Sheets struct {
	SpreadsheetID  string        `koanf:"spreadsheet_id"`
	CredentialsB64 string        `koanf:"credentials_b64"`
	SheetName      string        `koanf:"sheet_name"`
	AppendTimeout  time.Duration `koanf:"append_timeout" validate:"gte=0"`
	// Memory records leads in process instead of a spreadsheet.  Local
	// development only.
	Memory bool `koanf:"memory"`
}

//
// WhatsApp section
//

// WhatsApp holds the business chat number.
type WhatsApp struct {
	Number string `koanf:"number"`
	Region string `koanf:"region" validate:"omitempty,len=2,alpha"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // PROPERTYSITE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the aggregate returned by Load().
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Sheets   Sheets   `koanf:"sheets"`
	WhatsApp WhatsApp `koanf:"whatsapp"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}

//
// Defaults
//

const (
	DefaultListenAddr    = ":8080"
	DefaultRateLimit     = 10
	DefaultRateBurst     = 5
	DefaultBodyLimit     = 64 << 10
	DefaultSheetName     = "Sheet1"
	DefaultAppendTimeout = 10 * time.Second
	DefaultWhatsApp      = "9714512452"
	DefaultRegion        = "IN"
)

// applyDefaults fills zero values.  Rate limiting keeps its default unless
// the tree set it explicitly, so `rate_limit: 0` still disables it.
func (c *Config) applyDefaults(rateSet bool) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = DefaultListenAddr
	}
	if !rateSet {
		c.HTTP.RateLimit = DefaultRateLimit
	}
	if c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = DefaultRateBurst
	}
	if c.HTTP.BodyLimit == 0 {
		c.HTTP.BodyLimit = DefaultBodyLimit
	}
	if c.Sheets.SheetName == "" {
		c.Sheets.SheetName = DefaultSheetName
	}
	if c.Sheets.AppendTimeout == 0 {
		c.Sheets.AppendTimeout = DefaultAppendTimeout
	}
	if c.WhatsApp.Number == "" {
		c.WhatsApp.Number = DefaultWhatsApp
	}
	if c.WhatsApp.Region == "" {
		c.WhatsApp.Region = DefaultRegion
	}
}
