// internal/form/validate.go
//
// Lead forms: field rules.
//
// Context
//   Every form checks the same three identity fields with the primitives in
//   internal/validate.  Form-specific rules arrive through a ValidateFunc
//   supplied by the caller; RequiredValidator derives one from a FormDef so
//   a booking's category, project, and budget are enforced from the same
//   YAML that renders them.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"unicode/utf8"

	"github.com/yanizio/propertysite/internal/validate"
)

// Field names shared by every lead form.
const (
	FieldFullName         = "fullName"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldMessage          = "message"
	FieldPropertyCategory = "propertyCategory"
	FieldProject          = "project"
	FieldBudget           = "budget"
	FieldPropertyName     = "propertyName"
	FieldVisitDate        = "visitDate"
	FieldVisitTime        = "visitTime"
)

// User-facing messages for the identity fields.
const (
	MsgNameRequired  = "Full name is required"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Please enter a valid email address"
	MsgPhoneRequired = "Phone number is required"
	MsgPhoneInvalid  = "Please enter a valid 10-digit phone number"
	msgRequired      = "This field is required"
	msgOption        = "Please choose one of the listed options"
	msgTooLong       = "Please use at most %d characters"
)

// ValidateFunc returns extra field errors for v.  A nil or empty map means
// the values pass.
type ValidateFunc func(v Values) Errors

// coreErrors runs the identity checks every form shares.
func coreErrors(v Values) Errors {
	errs := Errors{}

	if !validate.IsRequired(v[FieldFullName]) {
		errs[FieldFullName] = MsgNameRequired
	}

	switch email := v[FieldEmail]; {
	case !validate.IsRequired(email):
		errs[FieldEmail] = MsgEmailRequired
	case !validate.IsValidEmail(email):
		errs[FieldEmail] = MsgEmailInvalid
	}

	switch phone := v[FieldPhone]; {
	case !validate.IsRequired(phone):
		errs[FieldPhone] = MsgPhoneRequired
	case !validate.IsValidPhone(phone):
		errs[FieldPhone] = MsgPhoneInvalid
	}

	return errs
}

// isCore reports whether name is checked by coreErrors.
func isCore(name string) bool {
	return name == FieldFullName || name == FieldEmail || name == FieldPhone
}

// RequiredValidator builds a ValidateFunc from fd: every required non-core
// field must be present, select values must be one of the listed options,
// and no value may exceed its maxlength, counted in characters.  Presence
// and format of the core fields stay with coreErrors.
func RequiredValidator(fd *FormDef) ValidateFunc {
	return func(v Values) Errors {
		errs := Errors{}
		for i := range fd.Fields {
			f := &fd.Fields[i]
			val := v[f.Name]
			if f.MaxLength > 0 && utf8.RuneCountInString(val) > f.MaxLength {
				errs[f.Name] = fmt.Sprintf(msgTooLong, f.MaxLength)
				continue
			}
			if isCore(f.Name) {
				continue
			}
			if !validate.IsRequired(val) {
				if f.Required {
					errs[f.Name] = requiredMsg(f)
				}
				continue
			}
			if f.Type == "select" && !optionAllowed(f.OptionsFor(v), val) {
				errs[f.Name] = msgOption
			}
		}
		return errs
	}
}

// Chain runs each validator in order and merges their errors.  Later
// validators win on the same field.
func Chain(fns ...ValidateFunc) ValidateFunc {
	return func(v Values) Errors {
		out := Errors{}
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			for k, msg := range fn(v) {
				out[k] = msg
			}
		}
		return out
	}
}

func optionAllowed(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}

func requiredMsg(f *FieldDef) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	return msgRequired
}
