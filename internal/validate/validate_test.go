package validate

import "testing"

func TestIsRequired(t *testing.T) {
	for in, want := range map[string]bool{
		"":        false,
		"   ":     false,
		"\t\n":    false,
		"a":       true,
		"  Asha ": true,
	} {
		if got := IsRequired(in); got != want {
			t.Errorf("IsRequired(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"asha@example.com",
		"a.b+c@sub.domain.in",
		"x@y.z",
	}
	invalid := []string{
		"",
		"not-an-email",
		"asha@example",
		"asha example@x.com",
		"@example.com",
		"asha@@example.com",
		"asha@.com ",
	}
	for _, v := range valid {
		if !IsValidEmail(v) {
			t.Errorf("IsValidEmail(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if IsValidEmail(v) {
			t.Errorf("IsValidEmail(%q) = true, want false", v)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	valid := []string{
		"9876543210",
		"6000000000",
		"98765 43210",
		" 7 8 9 0 1 2 3 4 5 6 ",
		"8123456789\n",
	}
	invalid := []string{
		"",
		"1234567890",
		"5876543210",
		"987654321",
		"98765432101",
		"+919876543210",
		"98765-43210",
		"98765abcde",
	}
	for _, v := range valid {
		if !IsValidPhone(v) {
			t.Errorf("IsValidPhone(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if IsValidPhone(v) {
			t.Errorf("IsValidPhone(%q) = true, want false", v)
		}
	}
}

// Every ten-digit string passes exactly when its first digit is 6-9.
func TestIsValidPhone_LeadingDigit(t *testing.T) {
	for d := '0'; d <= '9'; d++ {
		v := string(d) + "123456789"
		want := d >= '6'
		if got := IsValidPhone(v); got != want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", v, got, want)
		}
	}
}
