// internal/whatsapp/link.go
//
// Messaging Redirect: chat deep links.
//
// Context
// -------
// After a lead is recorded the visitor is handed to the sales team on
// WhatsApp with the lead details prefilled.  BuildDeepLink produces
//
//	https://wa.me/<digits>?text=<percent-encoded message>
//
// where <digits> is the business number in international form without the
// leading "+".  The message lists the lead fields one per line under a
// "<Form type>:" heading; absent fields are omitted.
//
// Notes
// -----
//   - Numbers are normalised with nyaruka/phonenumbers against a default
//     region (India).  Unparseable input falls back to its digits.
//   - Spaces encode as %20, never "+", since wa.me shows a literal "+".
//   - Oxford commas, two spaces after periods.
package whatsapp

import (
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/yanizio/propertysite/internal/lead"
)

// DefaultNumber is used when no business number is configured.
const DefaultNumber = "9714512452"

// DefaultRegion is the ISO region used to interpret national numbers.
const DefaultRegion = "IN"

const baseURL = "https://wa.me/"

// NormalizeNumber returns number in E.164 form without the "+".  National
// numbers are read in region.  When parsing fails the digits of the input
// are returned unchanged.
func NormalizeNumber(number, region string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if region == "" {
		region = DefaultRegion
	}

	num, err := phonenumbers.Parse(trimmed, region)
	if err == nil && phonenumbers.IsPossibleNumber(num) {
		return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+")
	}
	return digits(trimmed)
}

// Message builds the prefilled chat text for s.
func Message(s lead.Submission) string {
	ft, _ := lead.ParseFormType(string(s.FormType))

	var b strings.Builder
	b.WriteString(ft.Title())
	b.WriteString(":")

	line := func(label, v string) {
		if v = strings.TrimSpace(v); v == "" {
			return
		}
		b.WriteString("\n")
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(v)
	}

	line("Name", s.FullName)
	line("Email", s.Email)
	line("Phone", s.Phone)
	line("Property", firstNonEmpty(s.PropertyName, s.Project))
	line("Category", s.PropertyCategory)
	if s.PropertyName != "" && s.Project != "" && s.Project != s.PropertyName {
		line("Type", s.Project)
	}
	line("Budget", s.Budget)
	line("Visit Date", s.VisitDate)
	line("Visit Time", s.VisitTime)
	line("Message", s.Message)
	return b.String()
}

// BuildDeepLink returns the wa.me URL for s addressed to number.  An empty
// number uses DefaultNumber.
func BuildDeepLink(number, region string, s lead.Submission) string {
	return TextLink(number, region, Message(s))
}

// TextLink returns the wa.me URL that opens a chat with text prefilled.
func TextLink(number, region, text string) string {
	if strings.TrimSpace(number) == "" {
		number = DefaultNumber
	}
	u := baseURL + NormalizeNumber(number, region)
	if text == "" {
		return u
	}
	return u + "?text=" + Encode(text)
}

// Encode percent-encodes text for a wa.me query, spaces as %20.
func Encode(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
