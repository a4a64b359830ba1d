// internal/sheets/sheets.go
//
// Google Sheets row recorder.
//
// Context
// -------
// The lead sheet is the system of record.  Recorder appends one lead.Row
// per accepted submission to `<sheet>!A:J` with RAW input and INSERT_ROWS
// so concurrent appends never overwrite each other.
//
// Configuration is checked per call, not at startup.  A site deployed
// without spreadsheet settings still serves pages; only the intake
// endpoint answers with a configuration error, and it does so before any
// network traffic (Ready).
//
// Workflow
// --------
//  1. Ready validates the spreadsheet id and decodes the base64 service
//     account JSON.  Failures are *lead.ConfigError.
//  2. The first Append builds the *sheets.Service and reuses it after.
//  3. Append runs under AppendTimeout inside an OpenTelemetry span and
//     records latency in metrics.SheetAppendSeconds.  API failures are
//     *lead.UpstreamError.
//
// Notes
// -----
//   - Scope is fixed to spreadsheet write access.
//   - Oxford commas, two spaces after periods.
package sheets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/yanizio/propertysite/internal/lead"
	"github.com/yanizio/propertysite/internal/metrics"
)

// Setting names reported in configuration errors.  They match the
// environment variables operators actually set.
const (
	SettingSpreadsheetID = "GOOGLE_SHEET_ID"
	SettingCredentials   = "GOOGLE_SERVICE_ACCOUNT_BASE64"
)

// Defaults applied by New.
const (
	DefaultSheetName     = "Sheet1"
	DefaultAppendTimeout = 10 * time.Second
)

var tracer = otel.Tracer("propertysite.internal.sheets")

// Recorder is what the intake endpoint needs from a spreadsheet.
type Recorder interface {
	// Ready reports whether the recorder is configured.  It must not touch
	// the network.
	Ready() error
	// Append writes one row.
	Append(ctx context.Context, row lead.Row) error
}

// Config holds the spreadsheet settings.
type Config struct {
	SpreadsheetID  string
	CredentialsB64 string
	SheetName      string
	AppendTimeout  time.Duration

	// ClientOptions, when set, replace the credential options passed to
	// the Sheets client.  Used to point at a local endpoint.
	ClientOptions []option.ClientOption
}

// Client is a Recorder backed by the Google Sheets API.  Safe for
// concurrent use.
type Client struct {
	cfg Config
	log *zap.SugaredLogger

	mu  sync.Mutex
	svc *gsheets.Service
}

var _ Recorder = (*Client)(nil)

// New returns a Client.  It never fails; configuration problems surface
// from Ready and Append.
func New(cfg Config, log *zap.SugaredLogger) *Client {
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.AppendTimeout <= 0 {
		cfg.AppendTimeout = DefaultAppendTimeout
	}
	if log == nil {
		log = zap.S()
	}
	return &Client{cfg: cfg, log: log}
}

// Range returns the A1 range rows are appended to.
func (c *Client) Range() string {
	return quoteSheet(c.cfg.SheetName) + "!A:" + lead.LastColumn
}

// Ready checks that both settings are present and the credential decodes
// to a JSON document.
func (c *Client) Ready() error {
	_, err := c.credentials()
	return err
}

// Append writes row below the last row of the sheet.
func (c *Client) Append(ctx context.Context, row lead.Row) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.AppendTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "sheets.values.append", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("sheets.range", c.Range()),
		attribute.Int("sheets.columns", len(row)),
	)

	start := time.Now()
	vr := &gsheets.ValueRange{Values: [][]interface{}{row.Values()}}
	resp, err := svc.Spreadsheets.Values.Append(c.cfg.SpreadsheetID, c.Range(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	metrics.ObserveAppend(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return &lead.UpstreamError{Op: "append", Err: err}
	}

	if resp.Updates != nil {
		c.log.Debugw("sheet row appended",
			"range", resp.Updates.UpdatedRange,
			"cells", resp.Updates.UpdatedCells,
		)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (c *Client) credentials() ([]byte, error) {
	if strings.TrimSpace(c.cfg.SpreadsheetID) == "" {
		return nil, &lead.ConfigError{Setting: SettingSpreadsheetID}
	}
	if strings.TrimSpace(c.cfg.CredentialsB64) == "" {
		return nil, &lead.ConfigError{Setting: SettingCredentials}
	}
	raw, err := DecodeCredentials(c.cfg.CredentialsB64)
	if err != nil {
		return nil, &lead.ConfigError{Setting: SettingCredentials, Err: err}
	}
	return raw, nil
}

func (c *Client) service(ctx context.Context) (*gsheets.Service, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}

	opts := c.cfg.ClientOptions
	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsJSON(creds),
			option.WithScopes(gsheets.SpreadsheetsScope),
		}
	}

	// The service outlives the request that first builds it.
	svc, err := gsheets.NewService(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, &lead.ConfigError{Setting: SettingCredentials, Err: err}
	}
	c.svc = svc
	return svc, nil
}

var errNotJSON = errors.New("decoded credential is not a JSON object")

// DecodeCredentials base64-decodes a service account key and checks that
// the result is a JSON object.  Standard and URL alphabets, padded or not,
// are accepted.
func DecodeCredentials(b64 string) ([]byte, error) {
	s := strings.Join(strings.Fields(b64), "")
	var (
		raw []byte
		err error
	)
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	} {
		if raw, err = enc.DecodeString(s); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}

	var probe map[string]any
	if json.Unmarshal(raw, &probe) != nil {
		return nil, errNotJSON
	}
	return raw, nil
}

// quoteSheet wraps names that need it in single quotes per A1 notation.
func quoteSheet(name string) string {
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}
