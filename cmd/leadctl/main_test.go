package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yanizio/propertysite/internal/intake"
	"github.com/yanizio/propertysite/internal/lead"
	"github.com/yanizio/propertysite/internal/sheets"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSubmit(t *testing.T) {
	mem := &sheets.Memory{}
	srv := httptest.NewServer(intake.New(mem, intake.Options{}))
	defer srv.Close()

	out, _, err := run(t, "submit", "--endpoint", srv.URL,
		"--type", "enquiry", "--property", "water-lily",
		"--name", "Asha Rao", "--email", "asha@example.com", "--phone", "9876543210")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(out, "https://wa.me/919714512452?text=") {
		t.Errorf("output has no chat link:\n%s", out)
	}
	if !strings.Contains(out, "submitted enquiry lead") {
		t.Errorf("output has no confirmation:\n%s", out)
	}

	rows := mem.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if got := rows[0][lead.ColPropertyName]; got != "Water Lily" {
		t.Errorf("property name = %q, want Water Lily", got)
	}
}

func TestSubmitBookingRepeatedly(t *testing.T) {
	mem := &sheets.Memory{}
	srv := httptest.NewServer(intake.New(mem, intake.Options{}))
	defer srv.Close()

	const runs = 40
	for i := 0; i < runs; i++ {
		_, errOut, err := run(t, "submit", "--endpoint", srv.URL, "--type", "booking",
			"--name", "Ravi", "--email", "ravi@example.com", "--phone", "9876543210",
			"--category", "Residential", "--project", "3 BHK", "--budget", "2 Cr - 3 Cr")
		if err != nil {
			t.Fatalf("run %d: %v\n%s", i, err, errOut)
		}
	}

	rows := mem.Rows()
	if len(rows) != runs {
		t.Fatalf("rows = %d, want %d", len(rows), runs)
	}
	for _, row := range rows {
		if row[lead.ColProject] != "3 BHK" || row[lead.ColPropertyCategory] != "Residential" {
			t.Fatalf("row = %v", row)
		}
	}
}

func TestSubmitInvalid(t *testing.T) {
	mem := &sheets.Memory{}
	srv := httptest.NewServer(intake.New(mem, intake.Options{}))
	defer srv.Close()

	_, errOut, err := run(t, "submit", "--endpoint", srv.URL,
		"--name", "Asha Rao", "--email", "asha@", "--phone", "12345")
	if err == nil {
		t.Fatal("want error for invalid lead")
	}
	if !strings.Contains(errOut, "email:") || !strings.Contains(errOut, "phone:") {
		t.Errorf("field errors not reported:\n%s", errOut)
	}
	if n := len(mem.Rows()); n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
}

func TestSubmitServerError(t *testing.T) {
	srv := httptest.NewServer(intake.New(&sheets.Memory{ReadyErr: &lead.ConfigError{Setting: "GOOGLE_SHEET_ID"}}, intake.Options{}))
	defer srv.Close()

	out, _, err := run(t, "submit", "--endpoint", srv.URL,
		"--name", "Asha Rao", "--email", "asha@example.com", "--phone", "9876543210")
	if err == nil || err.Error() != lead.MsgConfiguration {
		t.Fatalf("err = %v, want %q", err, lead.MsgConfiguration)
	}
	if strings.Contains(out, "wa.me") {
		t.Errorf("chat link printed after a failed submit:\n%s", out)
	}
}

func TestLink(t *testing.T) {
	out, _, err := run(t, "link", "--text", "--type", "booking",
		"--name", "Ravi", "--email", "ravi@example.com", "--phone", "9876543210",
		"--category", "Residential", "--project", "3 BHK", "--budget", "2 Cr - 3 Cr")
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	for _, want := range []string{"Booking:", "Name: Ravi", "Budget: 2 Cr - 3 Cr", "https://wa.me/919714512452?text=Booking%3A"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProperties(t *testing.T) {
	out, _, err := run(t, "properties", "--category", "commercial")
	if err != nil {
		t.Fatalf("properties: %v", err)
	}
	if !strings.Contains(out, "signature-business-park") || strings.Contains(out, "water-lily") {
		t.Errorf("unexpected listing:\n%s", out)
	}

	if _, _, err := run(t, "properties", "--category", "plots"); err == nil {
		t.Error("want error for unknown category")
	}
}

func TestVersionShort(t *testing.T) {
	out, _, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", out, version)
	}
}
