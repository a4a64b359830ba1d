// internal/leadform/view.go
//
// Form Views: contact, booking, and enquiry.
//
// Context
// -------
// A View is one form instance on a page.  It wires three parts together:
//
//	form.Controller ─submit→ Sender (POST /api/submit-form) ─ok→ Redirector (wa.me)
//
// and owns the rules that differ per form: which definition renders it,
// which extra fields it requires, and how a listing's details are folded
// into the payload.  The chat link opens only after the Sender reported
// success; a rejected or failed send leaves the visitor's input in place
// with a message and never opens the chat.
//
// Payload normalisation
// ---------------------
//   - propertyCategory  listing category, else the selected value.
//   - project           the selected value, else the listing name.
//   - propertyName      listing name, else the entered value.
//
//------------------------------------------------------------------------------

package leadform

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sort"

	"go.uber.org/zap"

	"github.com/yanizio/propertysite/internal/form"
	"github.com/yanizio/propertysite/internal/lead"
	"github.com/yanizio/propertysite/internal/property"
	"github.com/yanizio/propertysite/internal/submit"
)

// Shown when the send failed before the server answered.
const msgTransport = "Submission failed. Please try again."

// Sender delivers a submission to the intake endpoint.  *submit.Client
// satisfies it.
type Sender interface {
	Send(ctx context.Context, s lead.Submission) (submit.Result, error)
}

// Redirector opens the chat hand-off.  *whatsapp.Redirect satisfies it.
type Redirector interface {
	Open(ctx context.Context, s lead.Submission) string
}

// Options configures a View.
type Options struct {
	// Property is the listing the form is about, if any.
	Property *property.Property
	// PropertyName is used when no listing record is at hand.
	PropertyName string

	Sender   Sender     // required
	Redirect Redirector // optional; nil skips the chat hand-off
	// OnSuccess runs after the chat link was handed off.
	OnSuccess func(res submit.Result, link string)
	Logger    *zap.SugaredLogger
}

// View is a form instance.  Safe for concurrent use.
type View struct {
	ft   lead.FormType
	def  *form.FormDef
	opts Options
	ctrl *form.Controller
	log  *zap.SugaredLogger
}

// New builds a View for ft.
func New(ft lead.FormType, opts Options) (*View, error) {
	def, ok := form.Definition(ft)
	if !ok {
		return nil, fmt.Errorf("leadform: unknown form type %q", ft)
	}
	if opts.Sender == nil {
		return nil, errors.New("leadform: Sender is required")
	}
	if opts.Property != nil && opts.PropertyName == "" {
		opts.PropertyName = opts.Property.Name
	}

	v := &View{ft: ft, def: def, opts: opts, log: opts.Logger}
	if v.log == nil {
		v.log = zap.S()
	}

	var defaults form.Values
	if opts.PropertyName != "" {
		defaults = form.Values{form.FieldMessage: "I'm interested in " + opts.PropertyName}
	}
	v.ctrl = form.NewController(form.Options{
		Defaults: defaults,
		OnSubmit: v.send,
		Validate: form.RequiredValidator(def),
	})
	return v, nil
}

// FormType reports which form this is.
func (v *View) FormType() lead.FormType { return v.ft }

// State returns the controller state.
func (v *View) State() form.State { return v.ctrl.State() }

// UpdateField sets one value.  Changing the property category clears the
// dependent BHK / type selection, since its options change with it.
func (v *View) UpdateField(name, value string) {
	if name == form.FieldPropertyCategory && v.ctrl.State().Values[name] != value {
		if f, ok := v.def.Field(form.FieldProject); ok && f.DependsOn == form.FieldPropertyCategory {
			v.ctrl.UpdateField(form.FieldProject, "")
		}
	}
	v.ctrl.UpdateField(name, value)
}

// Fill applies vals through UpdateField in the definition's field order,
// so a parent select is set before the fields that depend on it.  Names
// the definition does not list follow in sorted order.
func (v *View) Fill(vals form.Values) {
	done := make(map[string]bool, len(vals))
	for _, f := range v.def.Fields {
		if val, ok := vals[f.Name]; ok {
			v.UpdateField(f.Name, val)
			done[f.Name] = true
		}
	}
	rest := make([]string, 0, len(vals))
	for name := range vals {
		if !done[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		v.UpdateField(name, vals[name])
	}
}

// Submit validates and, when valid, sends.  See form.Controller.Submit.
func (v *View) Submit(ctx context.Context) form.Outcome { return v.ctrl.Submit(ctx) }

// Reset is the "submit another" action.
func (v *View) Reset() { v.ctrl.Reset() }

// Render returns the form fragment for the current state, or the thank-you
// panel after a successful submission.
func (v *View) Render() (template.HTML, error) {
	st := v.ctrl.State()
	if st.IsSubmitted {
		return template.HTML(`<div class="lead-form-done" role="status"><h3>Thank you for your submission!</h3>` +
			`<button type="button" data-action="reset">Submit Another</button></div>`), nil
	}
	return form.RenderForm(v.ft, form.RenderOptions{
		Prefill:     st.Values,
		Errors:      st.Errors,
		SubmitError: st.SubmitError,
	})
}

// Payload maps form values onto a submission.
func (v *View) Payload(vals form.Values) lead.Submission {
	s := lead.Submission{
		FormType:         v.ft,
		FullName:         vals[form.FieldFullName],
		Email:            vals[form.FieldEmail],
		Phone:            vals[form.FieldPhone],
		PropertyCategory: vals[form.FieldPropertyCategory],
		Project:          vals[form.FieldProject],
		Budget:           vals[form.FieldBudget],
		Message:          vals[form.FieldMessage],
		PropertyName:     vals[form.FieldPropertyName],
		VisitDate:        vals[form.FieldVisitDate],
		VisitTime:        vals[form.FieldVisitTime],
	}
	if p := v.opts.Property; p != nil {
		s.PropertyCategory = p.Category.Label()
		s.PropertyName = p.Name
	} else if v.opts.PropertyName != "" {
		s.PropertyName = v.opts.PropertyName
	}
	if s.Project == "" {
		s.Project = v.opts.PropertyName
	}
	return s.Trim()
}

// send is the controller's submit callback.
func (v *View) send(ctx context.Context, vals form.Values) error {
	s := v.Payload(vals)

	res, err := v.opts.Sender.Send(ctx, s)
	if err != nil {
		v.log.Warnw("lead submit failed", "form_type", v.ft, "err", err)
		return visitorError(err)
	}

	// Recorded.  The chat hand-off is best effort and never fails the send.
	var link string
	if v.opts.Redirect != nil {
		link = v.opts.Redirect.Open(ctx, s)
	}
	if v.opts.OnSuccess != nil {
		v.opts.OnSuccess(res, link)
	}
	return nil
}

// visitorError keeps server messages and timeouts, and hides transport
// detail.
func visitorError(err error) error {
	if submit.IsRejected(err) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.New(msgTransport)
}
