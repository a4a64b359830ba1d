// internal/lead/model.go
//
// Lead submission model shared by the browser-side pipeline and the intake
// endpoint.
//
// Context
// -------
// A Submission is the JSON payload that crosses the system boundary on
// `POST /api/submit-form`.  It is built fresh for each attempt and is not
// retained after the request completes.  Field names on the wire match the
// site's historical camelCase keys so existing pages keep working.
//
// Notes
// -----
//   - Only fullName, email, and phone are required by the server.  Booking
//     forms add their own client-side rules (see internal/form).
//   - Oxford commas, two spaces after periods.
package lead

import "strings"

// FormType classifies the intent behind a submission.
type FormType string

const (
	FormContact FormType = "contact"
	FormBooking FormType = "booking"
	FormEnquiry FormType = "enquiry"
)

// FormTypes lists every recognised form type in display order.
var FormTypes = []FormType{FormContact, FormBooking, FormEnquiry}

// ParseFormType maps a wire value onto a FormType.  Empty input defaults to
// contact, matching what older pages sent.  ok is false for unknown values.
func ParseFormType(s string) (FormType, bool) {
	switch ft := FormType(strings.ToLower(strings.TrimSpace(s))); ft {
	case "":
		return FormContact, true
	case FormContact, FormBooking, FormEnquiry:
		return ft, true
	default:
		return FormType(s), false
	}
}

// Title is the capitalised label used in chat messages ("Contact", …).
func (t FormType) Title() string {
	switch t {
	case FormBooking:
		return "Booking"
	case FormEnquiry:
		return "Enquiry"
	default:
		return "Contact"
	}
}

// Submission is the normalised lead payload.
type Submission struct {
	FormType         FormType `json:"formType"`
	FullName         string   `json:"fullName"         validate:"required,max=200"`
	Email            string   `json:"email"            validate:"required,max=254"`
	Phone            string   `json:"phone"            validate:"required,max=32"`
	PropertyCategory string   `json:"propertyCategory,omitempty" validate:"max=100"`
	Project          string   `json:"project,omitempty"          validate:"max=200"`
	Budget           string   `json:"budget,omitempty"           validate:"max=100"`
	Message          string   `json:"message,omitempty"          validate:"max=4000"`
	PropertyName     string   `json:"propertyName,omitempty"     validate:"max=200"`
	VisitDate        string   `json:"visitDate,omitempty"        validate:"max=40"`
	VisitTime        string   `json:"visitTime,omitempty"        validate:"max=40"`
}

// Trim returns a copy with surrounding whitespace removed from every field.
func (s Submission) Trim() Submission {
	out := s
	out.FormType = FormType(strings.TrimSpace(string(s.FormType)))
	for _, p := range []*string{
		&out.FullName, &out.Email, &out.Phone, &out.PropertyCategory,
		&out.Project, &out.Budget, &out.Message, &out.PropertyName,
		&out.VisitDate, &out.VisitTime,
	} {
		*p = strings.TrimSpace(*p)
	}
	return out
}

// Echo is the subset returned to the browser on success.
type Echo struct {
	Reference    string   `json:"reference,omitempty"`
	FormType     FormType `json:"formType"`
	FullName     string   `json:"fullName"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	PropertyName string   `json:"propertyName,omitempty"`
}

// EchoOf builds the success echo for s.
func EchoOf(s Submission, ref string) Echo {
	return Echo{
		Reference:    ref,
		FormType:     s.FormType,
		FullName:     s.FullName,
		Email:        s.Email,
		Phone:        s.Phone,
		PropertyName: s.PropertyName,
	}
}
