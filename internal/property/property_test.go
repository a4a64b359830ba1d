package property

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct{ price, unit, want string }{
		{"1.85", "Cr", "₹1.85 Cr"},
		{"9,500", "per sq.ft.", "₹9,500 per sq.ft."},
		{PriceOnRequest, "Cr", PriceOnRequest},
		{"75", "", "₹75"},
	}
	for _, tc := range cases {
		if got := FormatPrice(tc.price, tc.unit); got != tc.want {
			t.Errorf("FormatPrice(%q, %q) = %q, want %q", tc.price, tc.unit, got, tc.want)
		}
	}
}

func TestEnquiryText(t *testing.T) {
	p := Property{Name: "Water Lily"}
	if got := EnquiryText(p, ""); got != "Hi, I'm interested in Water Lily." {
		t.Fatalf("got %q", got)
	}
	if got := EnquiryText(p, " Please share the floor plan. "); got != "Hi, I'm interested in Water Lily. Please share the floor plan." {
		t.Fatalf("got %q", got)
	}
}

func TestDefaultCatalogue(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatal("empty catalogue")
	}
	res, com := ByCategory(Residential), ByCategory(Commercial)
	if len(res)+len(com) != len(all) {
		t.Fatalf("categories %d+%d != %d", len(res), len(com), len(all))
	}
	p, ok := ByID("water-lily")
	if !ok || p.Label() != "3 BHK Apartment" {
		t.Fatalf("water-lily = %+v, %v", p, ok)
	}
	if _, ok := ByID("nope"); ok {
		t.Fatal("unknown id found")
	}

	all[0].Name = "mutated"
	if All()[0].Name == "mutated" {
		t.Fatal("All leaked internal slice")
	}
}

func TestLoad(t *testing.T) {
	c, err := Load([]byte("properties:\n  - name: Sky Plaza!\n    category: commercial\n    type: Office\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := c.ByID("sky-plaza"); !ok {
		t.Fatal("id not derived from name")
	}

	for name, doc := range map[string]string{
		"bad category": "properties:\n  - name: A\n    category: industrial\n",
		"no name":      "properties:\n  - category: residential\n",
		"duplicate":    "properties:\n  - name: A\n    category: residential\n  - id: a\n    name: B\n    category: commercial\n",
		"not yaml":     "properties: [",
	} {
		if _, err := Load([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"Water Lily":             "water-lily",
		"  --Sky  Plaza!!-- ":    "sky-plaza",
		"Tower 2 (Phase II)":     "tower-2-phase-ii",
		"???":                    "item",
		strings.Repeat("a", 120): strings.Repeat("a", 100),
	}
	for in, want := range cases {
		if got := MakeSlug(in); got != want {
			t.Errorf("MakeSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func router() http.Handler {
	h := &Handlers{Catalogue: Default(), Number: "9714512452", Region: "IN"}
	r := chi.NewRouter()
	r.Route("/api/properties", h.Routes)
	return r
}

func TestHandlers_List(t *testing.T) {
	rec := httptest.NewRecorder()
	router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties?category=commercial", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Properties []View `json:"properties"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Properties) != len(ByCategory(Commercial)) {
		t.Fatalf("got %d listings", len(body.Properties))
	}
	for _, v := range body.Properties {
		if v.Category != Commercial || v.DisplayPrice == "" {
			t.Errorf("bad view %+v", v)
		}
	}

	rec = httptest.NewRecorder()
	router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties?category=land", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown category status = %d", rec.Code)
	}
}

func TestHandlers_Get(t *testing.T) {
	rec := httptest.NewRecorder()
	router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties/tranquil-villas", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var v View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.DisplayPrice != PriceOnRequest {
		t.Fatalf("displayPrice = %q", v.DisplayPrice)
	}

	rec = httptest.NewRecorder()
	router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", rec.Code)
	}
}

func TestHandlers_WhatsApp(t *testing.T) {
	rec := httptest.NewRecorder()
	router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties/water-lily/whatsapp?note=Call+me", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	u, err := url.Parse(loc)
	if err != nil {
		t.Fatal(err)
	}
	if u.Host != "wa.me" || u.Path != "/919714512452" {
		t.Fatalf("location = %q", loc)
	}
	if got := u.Query().Get("text"); got != "Hi, I'm interested in Water Lily. Call me" {
		t.Fatalf("text = %q", got)
	}
}

func TestCategoryLabel(t *testing.T) {
	for c, want := range map[Category]string{
		Residential:       "Residential",
		Commercial:        "Commercial",
		Category("plots"): "plots",
	} {
		if got := c.Label(); got != want {
			t.Errorf("%q.Label() = %q, want %q", c, got, want)
		}
	}
}
