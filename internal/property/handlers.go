// internal/property/handlers.go
//
// JSON and redirect endpoints over the catalogue.
//
//   GET /api/properties[?category=residential|commercial]
//   GET /api/properties/{id}
//   GET /api/properties/{id}/whatsapp[?note=…]   302 to the chat deep link
//
// The WhatsApp route records nothing.  It is the quick "ask about this
// listing" button and is not a lead submission.
package property

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/propertysite/internal/whatsapp"
)

// View is the JSON shape of a listing.
type View struct {
	Property
	DisplayPrice string `json:"displayPrice"`
}

func viewOf(p Property) View { return View{Property: p, DisplayPrice: p.DisplayPrice()} }

// Handlers serves the catalogue.
type Handlers struct {
	Catalogue *Catalogue
	// Number and Region address the chat link.
	Number string
	Region string
}

// Routes mounts the handlers on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/whatsapp", h.WhatsApp)
}

// List writes every listing, optionally filtered by category.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	var list []Property
	switch cat := Category(strings.ToLower(r.URL.Query().Get("category"))); cat {
	case "":
		list = h.Catalogue.All()
	case Residential, Commercial:
		list = h.Catalogue.ByCategory(cat)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unknown category"})
		return
	}

	out := make([]View, 0, len(list))
	for _, p := range list {
		out = append(out, viewOf(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"properties": out})
}

// Get writes one listing.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Catalogue.ByID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Property not found"})
		return
	}
	writeJSON(w, http.StatusOK, viewOf(p))
}

// WhatsApp redirects to a chat prefilled with the enquiry text.
func (h *Handlers) WhatsApp(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Catalogue.ByID(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	link := whatsapp.TextLink(h.Number, h.Region, EnquiryText(p, r.URL.Query().Get("note")))
	http.Redirect(w, r, link, http.StatusFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
