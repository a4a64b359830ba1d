package leadform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanizio/propertysite/internal/form"
	"github.com/yanizio/propertysite/internal/intake"
	"github.com/yanizio/propertysite/internal/lead"
	"github.com/yanizio/propertysite/internal/property"
	"github.com/yanizio/propertysite/internal/sheets"
	"github.com/yanizio/propertysite/internal/submit"
	"github.com/yanizio/propertysite/internal/whatsapp"
)

// fixture runs the intake endpoint over an in-memory sheet and records
// every chat link the redirect opens.
type fixture struct {
	mem   *sheets.Memory
	srv   *httptest.Server
	hits  atomic.Int32
	redir *whatsapp.Redirect

	mu     sync.Mutex
	opened []string
	// rows seen by the opener at the moment it ran
	rowsAtOpen []int
}

func newFixture(t *testing.T, h http.Handler) *fixture {
	t.Helper()
	f := &fixture{mem: &sheets.Memory{}}
	if h == nil {
		h = intake.New(f.mem, intake.Options{})
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)

	f.redir = whatsapp.NewRedirect(whatsapp.DefaultNumber, whatsapp.DefaultRegion,
		whatsapp.OpenerFunc(func(_ context.Context, url string) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.opened = append(f.opened, url)
			f.rowsAtOpen = append(f.rowsAtOpen, len(f.mem.Rows()))
			return nil
		}), zap.NewNop().Sugar())
	return f
}

func (f *fixture) view(t *testing.T, ft lead.FormType, opts Options) *View {
	t.Helper()
	opts.Sender = submit.New(f.srv.URL)
	opts.Redirect = f.redir
	v, err := New(ft, opts)
	require.NoError(t, err)
	return v
}

func (f *fixture) links() []string {
	f.redir.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

func fill(v *View, name, email, phone string) {
	v.UpdateField(form.FieldFullName, name)
	v.UpdateField(form.FieldEmail, email)
	v.UpdateField(form.FieldPhone, phone)
}

func TestContactSubmitRecordsThenRedirects(t *testing.T) {
	f := newFixture(t, nil)

	var got submit.Result
	var gotLink string
	v := f.view(t, lead.FormContact, Options{OnSuccess: func(res submit.Result, link string) {
		got, gotLink = res, link
	}})
	fill(v, "Asha Rao", "asha@example.com", "9876543210")
	v.UpdateField(form.FieldMessage, "Call after 6pm")

	require.Equal(t, form.OutcomeSubmitted, v.Submit(context.Background()))

	rows := f.mem.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "contact", rows[0][lead.ColFormType])
	assert.Equal(t, "Asha Rao", rows[0][lead.ColFullName])
	assert.Equal(t, "Call after 6pm", rows[0][lead.ColMessage])

	links := f.links()
	require.Len(t, links, 1)
	assert.True(t, strings.HasPrefix(links[0], "https://wa.me/919714512452?text="))
	assert.Equal(t, []int{1}, f.rowsAtOpen, "chat opens only after the row exists")
	assert.Equal(t, links[0], gotLink)
	assert.Equal(t, "Asha Rao", got.Data.FullName)

	st := v.State()
	assert.True(t, st.IsSubmitted)
	assert.Empty(t, st.Values[form.FieldFullName])
}

func TestInvalidInputNeverReachesServer(t *testing.T) {
	f := newFixture(t, nil)
	v := f.view(t, lead.FormContact, Options{})
	fill(v, "Asha Rao", "asha@", "9876543210")

	assert.Equal(t, form.OutcomeInvalid, v.Submit(context.Background()))
	assert.Equal(t, form.MsgEmailInvalid, v.State().Errors[form.FieldEmail])
	assert.Zero(t, f.hits.Load())
	assert.Empty(t, f.links())
}

func TestOverlongNameStopsBeforeServer(t *testing.T) {
	f := newFixture(t, nil)
	v := f.view(t, lead.FormContact, Options{})
	fill(v, strings.Repeat("a", 201), "asha@example.com", "9876543210")

	assert.Equal(t, form.OutcomeInvalid, v.Submit(context.Background()))
	assert.Equal(t, "Please use at most 200 characters", v.State().Errors[form.FieldFullName])
	assert.Zero(t, f.hits.Load())
}

func TestServerFailureKeepsValuesAndSkipsRedirect(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to submit form"}`))
	}))
	called := false
	v := f.view(t, lead.FormContact, Options{OnSuccess: func(submit.Result, string) { called = true }})
	fill(v, "Asha Rao", "asha@example.com", "9876543210")

	assert.Equal(t, form.OutcomeFailed, v.Submit(context.Background()))

	st := v.State()
	assert.False(t, st.IsSubmitted)
	assert.Equal(t, "Failed to submit form", st.SubmitError)
	assert.Equal(t, "Asha Rao", st.Values[form.FieldFullName])
	assert.Empty(t, f.links())
	assert.False(t, called)
}

func TestUnsuccessfulReplySkipsRedirect(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"error":"Sheet is full"}`))
	}))
	v := f.view(t, lead.FormContact, Options{})
	fill(v, "Asha Rao", "asha@example.com", "9876543210")

	assert.Equal(t, form.OutcomeFailed, v.Submit(context.Background()))
	assert.Equal(t, "Sheet is full", v.State().SubmitError)
	assert.Empty(t, f.links())
}

func TestTransportFailureHidesDetail(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	v, err := New(lead.FormContact, Options{Sender: submit.New(url)})
	require.NoError(t, err)
	fill(v, "Asha Rao", "asha@example.com", "9876543210")

	assert.Equal(t, form.OutcomeFailed, v.Submit(context.Background()))
	assert.Equal(t, msgTransport, v.State().SubmitError)
}

func TestBookingRequiresSelections(t *testing.T) {
	f := newFixture(t, nil)
	v := f.view(t, lead.FormBooking, Options{})
	fill(v, "Ravi", "ravi@example.com", "9876543210")

	assert.Equal(t, form.OutcomeInvalid, v.Submit(context.Background()))
	errs := v.State().Errors
	assert.Contains(t, errs, form.FieldPropertyCategory)
	assert.Contains(t, errs, form.FieldProject)
	assert.Contains(t, errs, form.FieldBudget)
	assert.Zero(t, f.hits.Load())

	v.UpdateField(form.FieldPropertyCategory, "Residential")
	v.UpdateField(form.FieldProject, "3 BHK")
	v.UpdateField(form.FieldBudget, "1.5 Cr - 2 Cr")
	require.Equal(t, form.OutcomeSubmitted, v.Submit(context.Background()))

	rows := f.mem.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "booking", rows[0][lead.ColFormType])
	assert.Equal(t, "Residential", rows[0][lead.ColPropertyCategory])
	assert.Equal(t, "3 BHK", rows[0][lead.ColProject])
	assert.Equal(t, "1.5 Cr - 2 Cr", rows[0][lead.ColBudget])
	assert.Len(t, f.links(), 1)
}

func TestCategoryChangeClearsProject(t *testing.T) {
	v, err := New(lead.FormBooking, Options{Sender: submit.New("http://unused")})
	require.NoError(t, err)

	v.UpdateField(form.FieldPropertyCategory, "Residential")
	v.UpdateField(form.FieldProject, "2 BHK")
	v.UpdateField(form.FieldPropertyCategory, "Residential")
	assert.Equal(t, "2 BHK", v.State().Values[form.FieldProject])

	v.UpdateField(form.FieldPropertyCategory, "Commercial")
	assert.Empty(t, v.State().Values[form.FieldProject])
}

func TestFillSetsParentBeforeDependent(t *testing.T) {
	v, err := New(lead.FormBooking, Options{Sender: submit.New("http://unused")})
	require.NoError(t, err)

	// Map iteration order varies; repeat so both orders are exercised.
	for i := 0; i < 50; i++ {
		v.Reset()
		v.Fill(form.Values{
			form.FieldProject:          "Office",
			form.FieldPropertyCategory: "Commercial",
			form.FieldBudget:           "2 Cr - 3 Cr",
			form.FieldVisitTime:        "11:00",
		})
		st := v.State()
		require.Equal(t, "Office", st.Values[form.FieldProject], "iteration %d", i)
		assert.Equal(t, "Commercial", st.Values[form.FieldPropertyCategory])
		assert.Equal(t, "11:00", st.Values[form.FieldVisitTime])
	}
}

func TestEnquiryFoldsInListing(t *testing.T) {
	p, ok := property.ByID("water-lily")
	require.True(t, ok)

	f := newFixture(t, nil)
	v := f.view(t, lead.FormEnquiry, Options{Property: &p})
	assert.Equal(t, "I'm interested in "+p.Name, v.State().Values[form.FieldMessage])

	fill(v, "Meera", "meera@example.com", "98765 43210")
	require.Equal(t, form.OutcomeSubmitted, v.Submit(context.Background()))

	rows := f.mem.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "enquiry", rows[0][lead.ColFormType])
	assert.Equal(t, "Residential", rows[0][lead.ColPropertyCategory])
	assert.Equal(t, p.Name, rows[0][lead.ColProject])
	assert.Equal(t, p.Name, rows[0][lead.ColPropertyName])

	// The seeded message comes back after the reset.
	assert.Equal(t, "I'm interested in "+p.Name, v.State().Values[form.FieldMessage])
}

func TestPayloadPrefersSelectedProject(t *testing.T) {
	v, err := New(lead.FormEnquiry, Options{PropertyName: "Elysium Towers", Sender: submit.New("http://unused")})
	require.NoError(t, err)

	s := v.Payload(form.Values{
		form.FieldFullName:         " Kiran ",
		form.FieldPropertyCategory: "Commercial",
		form.FieldProject:          "Office",
		form.FieldVisitDate:        "2025-03-10",
		form.FieldVisitTime:        "11:00",
	})
	assert.Equal(t, lead.FormEnquiry, s.FormType)
	assert.Equal(t, "Kiran", s.FullName)
	assert.Equal(t, "Commercial", s.PropertyCategory)
	assert.Equal(t, "Office", s.Project)
	assert.Equal(t, "Elysium Towers", s.PropertyName)
	assert.Equal(t, "2025-03-10", s.VisitDate)
	assert.Equal(t, "11:00", s.VisitTime)
}

func TestRender(t *testing.T) {
	f := newFixture(t, nil)
	v := f.view(t, lead.FormContact, Options{})
	fill(v, "Asha Rao", "bad", "9876543210")
	v.Submit(context.Background())

	out, err := v.Render()
	require.NoError(t, err)
	assert.Contains(t, string(out), `data-form-type="contact"`)
	assert.Contains(t, string(out), form.MsgEmailInvalid)
	assert.Contains(t, string(out), `value="Asha Rao"`)

	v.UpdateField(form.FieldEmail, "asha@example.com")
	require.Equal(t, form.OutcomeSubmitted, v.Submit(context.Background()))
	out, err = v.Render()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Thank you for your submission!")

	v.Reset()
	out, err = v.Render()
	require.NoError(t, err)
	assert.Contains(t, string(out), "<form")
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(lead.FormType("survey"), Options{Sender: submit.New("http://unused")})
	assert.Error(t, err)
	_, err = New(lead.FormContact, Options{})
	assert.Error(t, err)
}
