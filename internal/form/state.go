// internal/form/state.go
//
// Lead forms: state controller.
//
// Context
//   A Controller owns one form instance's values, field errors, and
//   submission status.  It is the only place that decides whether a submit
//   attempt reaches the network:
//
//     Idle ─submit→ (validate) ─errors→ Idle with field errors
//                              └─ok→ Submitting ─ok→ Submitted (values reset)
//                                               └─err→ Idle with SubmitError
//
//   Values survive a failed submission so the visitor never retypes them.
//   While a submission is in flight a second Submit is a no-op; the button
//   disabling itself is not relied upon.
//
//   Controllers are safe for concurrent use.  The submit callback runs
//   without the lock held, so UpdateField stays responsive while the
//   request is pending.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"maps"
	"strings"
	"sync"
)

// Values maps field name → current value.
type Values map[string]string

// Errors maps field name → user-facing message.
type Errors map[string]string

// Clone returns an independent copy of v.
func (v Values) Clone() Values { return maps.Clone(v) }

// SubmitFunc delivers a snapshot of the form values.  A non-nil error marks
// the attempt failed; its message is shown to the visitor.
type SubmitFunc func(ctx context.Context, v Values) error

// Phase is the coarse controller state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmitted:
		return "submitted"
	default:
		return "idle"
	}
}

// Outcome reports what a Submit call did.
type Outcome int

const (
	// OutcomeInvalid means validation failed and nothing was sent.
	OutcomeInvalid Outcome = iota
	// OutcomeSubmitted means the callback succeeded.
	OutcomeSubmitted
	// OutcomeFailed means the callback returned an error.
	OutcomeFailed
	// OutcomeBusy means another submission was already in flight.
	OutcomeBusy
)

// State is a point-in-time copy of a Controller.
type State struct {
	Values       Values
	Errors       Errors
	IsSubmitting bool
	IsSubmitted  bool
	SubmitError  string
}

// Phase derives the coarse state from the flags.
func (s State) Phase() Phase {
	switch {
	case s.IsSubmitting:
		return PhaseSubmitting
	case s.IsSubmitted:
		return PhaseSubmitted
	default:
		return PhaseIdle
	}
}

// Options configures a Controller.
type Options struct {
	// Defaults seeds the values on creation and after every reset.
	Defaults Values
	// OnSubmit is required.
	OnSubmit SubmitFunc
	// Validate adds form-specific rules on top of the identity checks.
	Validate ValidateFunc
}

// Controller is the per-form state machine.  Zero value is invalid.
type Controller struct {
	defaults Values
	onSubmit SubmitFunc
	validate ValidateFunc

	mu sync.Mutex
	st State
}

// Default fallback when a failure carries no usable message.
const msgSubmitFallback = "An error occurred. Please try again."

// NewController returns a Controller in the idle state seeded with
// opts.Defaults.
func NewController(opts Options) *Controller {
	if opts.OnSubmit == nil {
		panic("form.NewController: OnSubmit is required")
	}
	c := &Controller{
		defaults: blankValues(opts.Defaults),
		onSubmit: opts.OnSubmit,
		validate: opts.Validate,
	}
	c.st = c.freshState()
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Values:       c.st.Values.Clone(),
		Errors:       maps.Clone(c.st.Errors),
		IsSubmitting: c.st.IsSubmitting,
		IsSubmitted:  c.st.IsSubmitted,
		SubmitError:  c.st.SubmitError,
	}
}

// UpdateField sets name to value and clears that field's error and any
// submit error.  It never touches the network.
func (c *Controller) UpdateField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Values[name] = value
	delete(c.st.Errors, name)
	c.st.SubmitError = ""
}

// Validate runs every rule against the current values without changing
// state.
func (c *Controller) Validate() Errors {
	c.mu.Lock()
	v := c.st.Values.Clone()
	c.mu.Unlock()
	return c.check(v)
}

// Submit validates the current values and, when they pass, hands a
// snapshot to the submit callback.
func (c *Controller) Submit(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.st.IsSubmitting {
		c.mu.Unlock()
		return OutcomeBusy
	}

	snapshot := c.st.Values.Clone()
	if errs := c.check(snapshot); len(errs) > 0 {
		c.st.Errors = errs
		c.mu.Unlock()
		return OutcomeInvalid
	}

	c.st.IsSubmitting = true
	c.st.Errors = Errors{}
	c.st.SubmitError = ""
	c.mu.Unlock()

	err := c.onSubmit(ctx, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.IsSubmitting = false
	if err != nil {
		c.st.SubmitError = submitMessage(err)
		return OutcomeFailed
	}
	c.st.Values = c.defaults.Clone()
	c.st.IsSubmitted = true
	return OutcomeSubmitted
}

// Reset restores the defaults and clears all status flags.  A reset while a
// submission is in flight leaves the in-flight flag alone so the pending
// result still lands.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	busy := c.st.IsSubmitting
	c.st = c.freshState()
	c.st.IsSubmitting = busy
}

func (c *Controller) freshState() State {
	return State{
		Values: c.defaults.Clone(),
		Errors: Errors{},
	}
}

func (c *Controller) check(v Values) Errors {
	errs := coreErrors(v)
	if c.validate != nil {
		for k, msg := range c.validate(v) {
			errs[k] = msg
		}
	}
	return errs
}

// blankValues returns the defaults every form starts from, overlaid with
// seed.
func blankValues(seed Values) Values {
	v := Values{
		FieldFullName: "",
		FieldEmail:    "",
		FieldPhone:    "",
		FieldMessage:  "",
		FieldProject:  "",
	}
	for k, val := range seed {
		v[k] = val
	}
	return v
}

func submitMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try again."
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return msgSubmitFallback
}
