// internal/form/renderer.go
//
// Lead forms: HTML renderer.
//
// Context
//   Given a FormDef this file converts the definition into plain, accessible
//   HTML.  Pages embed the fragment and post its values as JSON to
//   /api/submit-form, so there is no action attribute and no hidden token.
//
// Workflow
//   •  RenderForm looks up the FormDef by type and writes each field via
//      writeField in definition order.
//   •  Required, maxlength, and placeholder attributes are attached where
//      relevant.  Select options come from the YAML; dependent selects use
//      the current value of their parent.
//   •  Field errors (from a Controller state) are written into the error
//      span under each control and flagged with aria-invalid.
//   •  The caller receives template.HTML so the surrounding template does
//      not double-escape the markup.
//
// Style
//   Each input gets id="fld-{name}" and is wrapped in <div class="form-field">.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"

	"github.com/yanizio/propertysite/internal/lead"
)

// RenderOptions bundles optional parameters influencing HTML output.
type RenderOptions struct {
	// Prefill provides initial field values keyed by field name.
	Prefill Values
	// Errors are rendered beneath the matching controls.
	Errors Errors
	// SubmitError is shown above the fields when non-empty.
	SubmitError string
}

// RenderForm returns the HTML markup for the form of type ft.
func RenderForm(ft lead.FormType, opts RenderOptions) (template.HTML, error) {
	fd, ok := Definition(ft)
	if !ok {
		return "", fmt.Errorf("RenderForm: unknown form %q", ft)
	}

	var buf bytes.Buffer
	buf.WriteString(`<form class="lead-form" data-form-type="` + html.EscapeString(string(fd.ID)) + `" novalidate>` + "\n")

	if fd.Title != "" {
		buf.WriteString(`<h3>` + html.EscapeString(fd.Title) + `</h3>` + "\n")
	}
	if fd.Description != "" {
		buf.WriteString(`<p class="form-description">` + html.EscapeString(fd.Description) + `</p>` + "\n")
	}
	if opts.SubmitError != "" {
		buf.WriteString(`<div class="submit-error" role="alert">` + html.EscapeString(opts.SubmitError) + `</div>` + "\n")
	}

	for i := range fd.Fields {
		if err := writeField(&buf, &fd.Fields[i], opts); err != nil {
			return "", err
		}
	}

	buf.WriteString(`<input type="hidden" name="formType" value="` + html.EscapeString(string(fd.ID)) + `">` + "\n")
	buf.WriteString(`<button type="submit">Submit</button>` + "\n")
	buf.WriteString(`</form>`)
	return template.HTML(buf.String()), nil
}

// writeField emits HTML for an individual field into buf.
func writeField(buf *bytes.Buffer, f *FieldDef, opts RenderOptions) error {
	val := opts.Prefill[f.Name]
	msg := opts.Errors[f.Name]

	buf.WriteString(`<div class="form-field">` + "\n")

	id := `fld-` + html.EscapeString(f.Name)
	common := `id="` + id + `" name="` + html.EscapeString(f.Name) + `"`
	if f.Required {
		common += ` required`
	}
	if msg != "" {
		common += ` aria-invalid="true"`
	}

	// Label first (for accessibility)
	buf.WriteString(`<label for="` + id + `">` + html.EscapeString(f.Label) + `</label>` + "\n")

	switch f.Type {
	case "text", "email", "tel":
		buf.WriteString(`<input ` + common + ` type="` + f.Type + `"`)
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		if f.MaxLength > 0 {
			buf.WriteString(` maxlength="` + strconv.Itoa(f.MaxLength) + `"`)
		}
		if val != "" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case "textarea":
		buf.WriteString(`<textarea ` + common)
		if f.MaxLength > 0 {
			buf.WriteString(` maxlength="` + strconv.Itoa(f.MaxLength) + `"`)
		}
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		buf.WriteString(`>` + html.EscapeString(val) + `</textarea>` + "\n")

	case "select":
		buf.WriteString(`<select ` + common)
		if f.DependsOn != "" {
			buf.WriteString(` data-depends-on="` + html.EscapeString(f.DependsOn) + `"`)
		}
		buf.WriteString(`>` + "\n")
		buf.WriteString(`<option value="">` + html.EscapeString(f.Placeholder) + `</option>` + "\n")
		for _, opt := range f.OptionsFor(opts.Prefill) {
			sel := ""
			if val == opt {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(opt) + `"` + sel + `>` + html.EscapeString(opt) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	buf.WriteString(`<span class="error" aria-live="polite">` + html.EscapeString(msg) + `</span>` + "\n")
	buf.WriteString(`</div>` + "\n")
	return nil
}
