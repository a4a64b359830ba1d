// internal/intake/handler.go
//
// Lead Intake Endpoint: POST /api/submit-form.
//
// Context
// -------
// The handler is stateless per request.  The only shared state is the
// Recorder, whose spreadsheet client is built once and reused.
//
// Workflow
// --------
//  1. Recorder.Ready  → missing or undecodable configuration is a 500
//     "Server configuration error".  Nothing else runs.
//  2. Decode the JSON body (size-capped) and trim every field.
//  3. formType must be empty, contact, booking, or enquiry.  fullName,
//     email, and phone must be present; every field has a length cap.
//     Failures are a 400 naming the offending fields.  No upstream call.
//  4. Build the row with a server-stamped IST timestamp; client clocks are
//     never trusted.
//  5. Append.  Any failure is a 500 "Failed to submit form"; the cause is
//     logged, never returned.
//  6. 200 {success, message, data} where data echoes the identity fields
//     and a reference id.
//
// Each failure class logs under its own message so operators can tell them
// apart: "lead rejected: configuration", "lead rejected: validation", and
// "lead append failed".
package intake

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/propertysite/internal/lead"
	"github.com/yanizio/propertysite/internal/logger"
	"github.com/yanizio/propertysite/internal/metrics"
	"github.com/yanizio/propertysite/internal/sheets"
)

// DefaultBodyLimit caps request bodies when Options leave it unset.
const DefaultBodyLimit = 64 << 10

// formTypeUnknown labels metrics for unparseable form types.
const formTypeUnknown = "unknown"

// SuccessReply is the 200 body.
type SuccessReply struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    lead.Echo `json:"data"`
}

// ErrorReply is every non-200 body.
type ErrorReply struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Options tunes a Handler.
type Options struct {
	// BodyLimit in bytes.  0 uses DefaultBodyLimit.
	BodyLimit int64
	// Now stamps rows.  nil uses time.Now.
	Now func() time.Time
}

// Handler serves the intake endpoint.
type Handler struct {
	rec      sheets.Recorder
	limit    int64
	now      func() time.Time
	validate *validator.Validate
}

// New returns a Handler appending to rec.
func New(rec sheets.Recorder, opts Options) *Handler {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Handler{rec: rec, limit: opts.BodyLimit, now: opts.Now, validate: v}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	// 1. Configuration.
	if err := h.rec.Ready(); err != nil {
		h.configError(w, log, formTypeUnknown, err)
		return
	}

	// 2. Body.
	var s lead.Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.limit))
	if err := dec.Decode(&s); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Infow("lead rejected: validation", "reason", "body too large", "limit", h.limit)
			metrics.Lead(formTypeUnknown, metrics.OutcomeInvalid)
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorReply{Error: lead.MsgTooLarge})
			return
		}
		log.Infow("lead rejected: validation", "reason", "malformed body", "err", err)
		metrics.Lead(formTypeUnknown, metrics.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, ErrorReply{Error: lead.MsgBadRequest})
		return
	}
	s = s.Trim()

	// 3. Fields.
	ft, ok := lead.ParseFormType(string(s.FormType))
	if !ok {
		verr := &lead.ValidationError{Fields: map[string]string{"formType": "unknown form type"}}
		h.invalid(w, log, formTypeUnknown, lead.MsgInvalidFields, verr)
		return
	}
	s.FormType = ft

	if verr, missing := h.check(s); verr != nil {
		msg := lead.MsgInvalidFields
		if missing {
			msg = lead.MsgMissingFields
		}
		h.invalid(w, log, string(ft), msg, verr)
		return
	}

	// 4–5. Row and append.
	// Minted here.  The request id travels separately on the request logger.
	ref := uuid.NewString()
	row := lead.RowOf(s, h.now())
	if err := h.rec.Append(r.Context(), row); err != nil {
		if lead.IsConfig(err) {
			h.configError(w, log, string(ft), err)
			return
		}
		log.Errorw("lead append failed",
			"err", err,
			"form_type", ft,
			"reference", ref,
		)
		metrics.Lead(string(ft), metrics.OutcomeUpstreamError)
		writeJSON(w, http.StatusInternalServerError, ErrorReply{Error: lead.MsgSubmitFailed})
		return
	}

	// 6. Done.
	log.Infow("lead accepted",
		"form_type", ft,
		"reference", ref,
		"property", s.PropertyName,
	)
	metrics.Lead(string(ft), metrics.OutcomeAccepted)
	writeJSON(w, http.StatusOK, SuccessReply{
		Success: true,
		Message: lead.MsgSubmitted,
		Data:    lead.EchoOf(s, ref),
	})
}

// check runs the struct rules.  missing reports whether any required field
// was absent.
func (h *Handler) check(s lead.Submission) (verr *lead.ValidationError, missing bool) {
	err := h.validate.Struct(s)
	if err == nil {
		return nil, false
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return &lead.ValidationError{Fields: map[string]string{"body": err.Error()}}, false
	}

	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "required"
			missing = true
		case "max":
			fields[fe.Field()] = "too long (max " + fe.Param() + ")"
		default:
			fields[fe.Field()] = "invalid"
		}
	}
	return &lead.ValidationError{Fields: fields}, missing
}

func (h *Handler) invalid(w http.ResponseWriter, log *zap.SugaredLogger, ft, msg string, verr *lead.ValidationError) {
	names := verr.FieldNames()
	log.Infow("lead rejected: validation", "form_type", ft, "fields", names)
	metrics.Lead(ft, metrics.OutcomeInvalid)
	writeJSON(w, http.StatusBadRequest, ErrorReply{Error: msg, Details: strings.Join(names, ", ")})
}

func (h *Handler) configError(w http.ResponseWriter, log *zap.SugaredLogger, ft string, err error) {
	log.Errorw("lead rejected: configuration", "err", err)
	metrics.Lead(ft, metrics.OutcomeConfigError)
	writeJSON(w, http.StatusInternalServerError, ErrorReply{Error: lead.MsgConfiguration})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
