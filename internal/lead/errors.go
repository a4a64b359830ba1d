// internal/lead/errors.go
//
// Failure taxonomy for the lead pipeline.
//
// Context
// -------
//   - ConfigError    server configuration absent or undecodable.  Fatal,
//     operator-actionable, logged in full.
//   - ValidationError missing or malformed input.  Client-recoverable and
//     never logged as a server fault.
//   - UpstreamError  the spreadsheet append failed.  Retryable by the user;
//     the cause stays in server logs.
//   - RedirectError  the chat deep link could not be opened.  Never rolls
//     back an already-recorded lead.
//
// Callers match with errors.As or the Is* helpers below.
package lead

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Client-facing messages.  Detail stays server-side.
const (
	MsgConfiguration = "Server configuration error"
	MsgMissingFields = "Missing required fields"
	MsgSubmitFailed  = "Failed to submit form"
	MsgBadRequest    = "Invalid request body"
	MsgInvalidFields = "Invalid field values"
	MsgTooLarge      = "Request body too large"
	MsgSubmitted     = "Form submitted successfully"
)

// ConfigError reports missing or unusable server configuration.
type ConfigError struct {
	Setting string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("configuration: %s is not set", e.Setting)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Setting, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ValidationError carries per-field messages keyed by wire field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.FieldNames(), ", ")
}

// FieldNames returns the offending field names, sorted.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for n := range e.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// UpstreamError wraps a failed spreadsheet call.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("upstream %s: %v", e.Op, e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

// RedirectError wraps a failure to open the chat deep link.
type RedirectError struct {
	URL string
	Err error
}

func (e *RedirectError) Error() string { return fmt.Sprintf("open chat link: %v", e.Err) }

func (e *RedirectError) Unwrap() error { return e.Err }

func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
