// internal/property/slug.go
//
// Slug helper for listing ids.
//
// MakeSlug(title) converts arbitrary text into a URL-safe slug restricted
// to ASCII a-z, 0-9 and “-”.
//
// Rules
// -----
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.  That strips
//    spaces, punctuation, emoji, and non-ASCII.
// 3. Trim leading / trailing “-”.
// 4. If the result is empty, return "item".
// 5. Slugs are capped at 100 bytes.

package property

import "strings"

// MakeSlug converts title → lower-kebab ASCII.
func MakeSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastWasDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}
