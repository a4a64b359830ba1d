// internal/submit/client.go
//
// Submission Client.
//
// Context
// -------
// Client posts one lead.Submission as JSON to the intake endpoint and turns
// the reply into either a Result or an *Error.  It never retries and never
// opens a chat link; those decisions belong to the caller.
//
//   - 2xx with success:true      → Result.
//   - 2xx with success:false     → *Error carrying the server message.
//   - non-2xx                    → *Error{Status, Message} where Message is
//     the server's `error` field or a generic fallback.
//   - transport failure/timeout  → wrapped error from net/http.
//
// Notes
// -----
//   - The context bounds the whole round trip.  Cancel it to abandon a
//     request; nothing is retried.
//   - Oxford commas, two spaces after periods.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yanizio/propertysite/internal/lead"
)

// Path is the intake route relative to BaseURL.
const Path = "/api/submit-form"

// maxReply caps how much of a response body is read.
const maxReply = 1 << 20

// fallbackMessage is used when a failure carries no readable message.
const fallbackMessage = "submission failed"

// Result is the decoded success reply.
type Result struct {
	Message string    `json:"message"`
	Data    lead.Echo `json:"data"`
}

// Error reports a rejected submission.
type Error struct {
	Status  int
	Message string
	Details string
}

func (e *Error) Error() string { return e.Message }

// reply mirrors every shape the endpoint produces.
type reply struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    lead.Echo `json:"data"`
	Err     string    `json:"error"`
	Details string    `json:"details"`
}

// Client is safe for concurrent use.
type Client struct {
	// BaseURL is the site origin, e.g. "https://example.com".  Empty means
	// Path is used as-is (same-origin callers behind a proxy).
	BaseURL string
	// HTTPClient defaults to a client with a 15 s timeout.
	HTTPClient *http.Client
}

var defaultHTTP = &http.Client{Timeout: 15 * time.Second}

// New returns a Client for baseURL.
func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Send posts s and reports the outcome.
func (c *Client) Send(ctx context.Context, s lead.Submission) (Result, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return Result{}, fmt.Errorf("submit: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("submit: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReply))
	if err != nil {
		return Result{}, fmt.Errorf("submit: read reply: %w", err)
	}

	var r reply
	decodeErr := json.Unmarshal(raw, &r)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(r.Err)
		if decodeErr != nil || msg == "" {
			msg = fallbackMessage
		}
		return Result{}, &Error{Status: resp.StatusCode, Message: msg, Details: r.Details}
	}

	if decodeErr != nil {
		return Result{}, &Error{Status: resp.StatusCode, Message: fallbackMessage}
	}
	if !r.Success {
		msg := r.Err
		if msg == "" {
			msg = r.Message
		}
		if msg == "" {
			msg = fallbackMessage
		}
		return Result{}, &Error{Status: resp.StatusCode, Message: msg, Details: r.Details}
	}
	return Result{Message: r.Message, Data: r.Data}, nil
}

// IsRejected reports whether err came from the server rather than the
// transport.
func IsRejected(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

func (c *Client) endpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + Path
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return defaultHTTP
}
