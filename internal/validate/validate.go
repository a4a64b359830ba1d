// Package validate holds the pure field checks shared by every lead form.
//
// The functions are synchronous and side-effect free.  Form-specific rules
// (a booking needs a project and budget) are composed on top of these by
// internal/form through an injectable validator.
package validate

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Indian 10-digit mobile starting 6-9.
	phoneRe = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// IsRequired reports whether v has content after trimming whitespace.
func IsRequired(v string) bool { return len(strings.TrimSpace(v)) > 0 }

// IsValidEmail reports whether v has the simple local@domain.tld shape.
func IsValidEmail(v string) bool { return emailRe.MatchString(v) }

// IsValidPhone strips all whitespace from v and checks the mobile pattern.
func IsValidPhone(v string) bool { return phoneRe.MatchString(StripSpace(v)) }

// StripSpace removes every Unicode whitespace rune from v.
func StripSpace(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}
