// internal/form/definition.go
//
// Lead forms: YAML definition loader.
//
// Context
//   Each lead form (contact, booking, enquiry) is declared in a YAML file
//   under forms/ and embedded into the binary.  A definition lists the
//   form's fields in display order, their labels and select options, and
//   which of them the form requires beyond the core identity fields.  The
//   renderer, the rule builder, and the Form Views all read definitions from
//   one registry so the markup and the validation never drift apart.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef.
//   •  LoadFormDef parses one YAML document and validates structural rules.
//   •  init registers every embedded definition; Register lets callers
//      override one (tests, site-specific copy).
//   •  Definition offers safe, read-only access by form type.
//
//------------------------------------------------------------------------------

package form

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/propertysite/internal/lead"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one lead form loaded from YAML.
type FormDef struct {
	ID          lead.FormType `yaml:"id"`          // Form type.  Required.
	Title       string        `yaml:"title"`       // Display heading, optional.
	Description string        `yaml:"description"` // Sub-heading, optional.
	Fields      []FieldDef    `yaml:"fields"`      // Display order.
}

// FieldDef describes a single input control.
type FieldDef struct {
	Name        string              `yaml:"name"`        // Submission key.  Required.
	Label       string              `yaml:"label"`       // Human-readable label.  Required.
	Type        string              `yaml:"type"`        // text, email, tel, textarea, select.
	Placeholder string              `yaml:"placeholder"` // Also the empty <option> for selects.
	Required    bool                `yaml:"required"`    // True if input is mandatory.
	MaxLength   int                 `yaml:"maxlength"`   // 0 means unset.
	Options     []string            `yaml:"options"`     // Static select options.
	DependsOn   string              `yaml:"depends_on"`  // Field whose value picks OptionsBy.
	OptionsBy   map[string][]string `yaml:"options_by"`  // Options keyed by DependsOn value.
	ErrorMsg    string              `yaml:"error"`       // Message when a required value is missing.
}

// Field returns the named field and whether it exists.
func (fd *FormDef) Field(name string) (FieldDef, bool) {
	for _, f := range fd.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// OptionsFor returns the select options valid for f given the current form
// values.  Dependent selects return nil until their parent has a value.
func (f *FieldDef) OptionsFor(values Values) []string {
	if f.DependsOn == "" {
		return f.Options
	}
	return f.OptionsBy[values[f.DependsOn]]
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

//go:embed forms/*.yaml
var embedded embed.FS

var (
	registryMu sync.RWMutex
	registry   = make(map[lead.FormType]*FormDef)
)

func init() {
	if err := registerFS(embedded, "forms"); err != nil {
		panic(err)
	}
}

// Definition returns the parsed FormDef for ft.  The boolean is false when
// the type is unknown.
func Definition(ft lead.FormType) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[ft]
	return fd, ok
}

// Register inserts or overrides a definition.  Caller must ensure the
// FormDef passed LoadFormDef.
func Register(fd *FormDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[fd.ID] = fd
}

// ProjectOptions returns the BHK / unit-type options offered by the booking
// form for a property category.
func ProjectOptions(category string) []string {
	fd, ok := Definition(lead.FormBooking)
	if !ok {
		return nil
	}
	f, ok := fd.Field(FieldProject)
	if !ok {
		return nil
	}
	return f.OptionsBy[category]
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// LoadFormDef parses one YAML document, validates its structure, and returns
// a populated FormDef.  It NEVER mutates the registry.
func LoadFormDef(raw []byte, name string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", name, err)
	}
	if err := validateFormDef(&fd, name); err != nil {
		return nil, err
	}
	return &fd, nil
}

func registerFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		p := path.Join(dir, e.Name())
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read form file %s: %w", p, err)
		}
		fd, err := LoadFormDef(raw, p)
		if err != nil {
			return err
		}
		Register(fd)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

var errNoFields = errors.New("must have 'fields'")

// validateFormDef enforces structural rules that cannot be expressed via YAML
// tags alone.
func validateFormDef(fd *FormDef, name string) error {
	if _, ok := lead.ParseFormType(string(fd.ID)); !ok || fd.ID == "" {
		return fmt.Errorf("form definition %s: unknown or missing 'id' %q", name, fd.ID)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: %w", name, errNoFields)
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := validateField(f, name); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	// Dependent selects must point at an earlier field.
	for _, f := range fd.Fields {
		if f.DependsOn == "" {
			continue
		}
		if _, ok := seen[f.DependsOn]; !ok {
			return fmt.Errorf("form %s: field '%s' depends on unknown field '%s'", name, f.Name, f.DependsOn)
		}
	}
	return nil
}

// validateField confirms that essential attributes are present and sane.
func validateField(f *FieldDef, name string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", name)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", name, f.Name)
	}
	switch f.Type {
	case "text", "email", "tel", "textarea":
	case "select":
		if len(f.Options) == 0 && len(f.OptionsBy) == 0 {
			return fmt.Errorf("form %s: select '%s' has no options", name, f.Name)
		}
		if len(f.OptionsBy) > 0 && f.DependsOn == "" {
			return fmt.Errorf("form %s: select '%s' has options_by without depends_on", name, f.Name)
		}
	default:
		return fmt.Errorf("form %s: field '%s' has unsupported type %q", name, f.Name, f.Type)
	}
	if f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' maxlength cannot be negative", name, f.Name)
	}
	return nil
}
