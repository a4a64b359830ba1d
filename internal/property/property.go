// internal/property/property.go
//
// Property catalogue.
//
// Context
// -------
// Listings are declared in catalogue.yaml and embedded into the binary.
// The catalogue feeds three things: the /api/properties JSON endpoints,
// the enquiry form (which seeds its message with the property name), and
// the quick-enquiry WhatsApp link.
//
// Workflow
// --------
//   •  Load parses a YAML document, fills missing ids from the name slug,
//      and rejects unknown categories or duplicate ids.
//   •  Default returns the embedded catalogue, parsed once.
//   •  All, ByID, and ByCategory are read-only views; callers get copies.
//
//------------------------------------------------------------------------------

package property

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category splits listings into the two site sections.
type Category string

const (
	Residential Category = "residential"
	Commercial  Category = "commercial"
)

// Label is the form-facing spelling ("Residential", "Commercial").
func (c Category) Label() string {
	switch c {
	case Residential:
		return "Residential"
	case Commercial:
		return "Commercial"
	default:
		return string(c)
	}
}

// PriceOnRequest is shown verbatim instead of a figure.
const PriceOnRequest = "Price On Request"

// Property is one listing.
type Property struct {
	ID               string   `yaml:"id"                json:"id"`
	Name             string   `yaml:"name"              json:"name"`
	Category         Category `yaml:"category"          json:"category"`
	Type             string   `yaml:"type"              json:"type"`
	BHK              int      `yaml:"bhk"               json:"bhk,omitempty"`
	Price            string   `yaml:"price"             json:"price"`
	PriceUnit        string   `yaml:"price_unit"        json:"priceUnit"`
	PriceDescription string   `yaml:"price_description" json:"priceDescription,omitempty"`
	Location         string   `yaml:"location"          json:"location"`
	Size             string   `yaml:"size"              json:"size"`
	Possession       string   `yaml:"possession"        json:"possession,omitempty"`
	Developer        string   `yaml:"developer"         json:"developer,omitempty"`
	SuitableFor      []string `yaml:"suitable_for"      json:"suitableFor,omitempty"`
	Description      string   `yaml:"description"       json:"description"`
	Amenities        []string `yaml:"amenities"         json:"amenities"`
}

// DisplayPrice is FormatPrice applied to p.
func (p Property) DisplayPrice() string { return FormatPrice(p.Price, p.PriceUnit) }

// Label is the short unit description used in enquiry messages:
// "3 BHK Apartment" for homes, the type for commercial units.
func (p Property) Label() string {
	if p.Category == Residential && p.BHK > 0 {
		return fmt.Sprintf("%d BHK %s", p.BHK, p.Type)
	}
	return p.Type
}

// FormatPrice renders "₹<price> <unit>".  PriceOnRequest passes through.
func FormatPrice(price, unit string) string {
	if price == PriceOnRequest {
		return price
	}
	return strings.TrimSpace("₹" + price + " " + unit)
}

// EnquiryText is the quick-enquiry chat message for p.  extra, when
// non-empty, is appended after a space.
func EnquiryText(p Property, extra string) string {
	msg := "Hi, I'm interested in " + p.Name + "."
	if extra = strings.TrimSpace(extra); extra != "" {
		msg += " " + extra
	}
	return msg
}

// -----------------------------------------------------------------------------
// Catalogue
// -----------------------------------------------------------------------------

// Catalogue is an immutable, ordered set of listings.
type Catalogue struct {
	list []Property
	byID map[string]int
}

type document struct {
	Properties []Property `yaml:"properties"`
}

// Load parses raw into a Catalogue.
func Load(raw []byte) (*Catalogue, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	c := &Catalogue{byID: make(map[string]int, len(doc.Properties))}
	for i, p := range doc.Properties {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("catalogue entry %d: missing name", i)
		}
		if p.ID == "" {
			p.ID = MakeSlug(p.Name)
		}
		switch p.Category {
		case Residential, Commercial:
		default:
			return nil, fmt.Errorf("catalogue entry %q: unknown category %q", p.ID, p.Category)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalogue: duplicate id %q", p.ID)
		}
		c.byID[p.ID] = len(c.list)
		c.list = append(c.list, p)
	}
	return c, nil
}

// All returns every listing in catalogue order.
func (c *Catalogue) All() []Property {
	out := make([]Property, len(c.list))
	copy(out, c.list)
	return out
}

// ByID returns the listing with id.
func (c *Catalogue) ByID(id string) (Property, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Property{}, false
	}
	return c.list[i], true
}

// ByCategory returns the listings in cat, in catalogue order.
func (c *Catalogue) ByCategory(cat Category) []Property {
	var out []Property
	for _, p := range c.list {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}

//go:embed catalogue.yaml
var embedded []byte

var (
	defaultOnce sync.Once
	defaultCat  *Catalogue
)

// Default returns the embedded catalogue.  A malformed embedded file is a
// build defect and panics.
func Default() *Catalogue {
	defaultOnce.Do(func() {
		c, err := Load(embedded)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// All, ByID, and ByCategory query the embedded catalogue.
func All() []Property                    { return Default().All() }
func ByID(id string) (Property, bool)    { return Default().ByID(id) }
func ByCategory(cat Category) []Property { return Default().ByCategory(cat) }
