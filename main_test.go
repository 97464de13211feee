package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vacationRentalWebsite/internal/models"
)

type fakeAccount struct {
	password string
	user     models.User
}

// fakeBookingAPI serves the subset of the booking REST API the site calls
type fakeBookingAPI struct {
	mu         sync.Mutex
	accounts   map[string]fakeAccount
	properties map[string]models.Property
	revoked    map[string]bool
	payError   string
	created    int
	paid       int
	enquiries  []models.EnquiryRequest
}

func newFakeBookingAPI() *fakeBookingAPI {
	return &fakeBookingAPI{
		accounts: map[string]fakeAccount{
			"guest@example.com": {password: "secret1", user: models.User{ID: "u1", Name: "Grace Guest", Email: "guest@example.com", Role: models.RoleUser}},
			"admin@example.com": {password: "secret2", user: models.User{ID: "a1", Name: "Ada Admin", Email: "admin@example.com", Role: models.RoleAdmin}},
		},
		properties: map[string]models.Property{
			"p1": {
				ID:        "p1",
				Title:     "Seaside Villa",
				Type:      models.PropertyVilla,
				Price:     models.PriceSchedule{PerNight: 200, CleaningFee: 50},
				Location:  models.Location{Address: "1 Shore Rd", City: "Malibu", Country: "USA"},
				Bedrooms:  3,
				Bathrooms: 2,
				MaxGuests: 4,
				Featured:  true,
				Status:    models.PropertyActive,
			},
		},
		revoked: map[string]bool{},
	}
}

// calls reports how many bookings were created and paid
func (f *fakeBookingAPI) calls() (created, paid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, f.paid
}

func (f *fakeBookingAPI) sentEnquiries() []models.EnquiryRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.EnquiryRequest(nil), f.enquiries...)
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}, extra map[string]interface{}) {
	body := map[string]interface{}{"success": status < 300, "data": data}
	for k, v := range extra {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, nil, map[string]interface{}{"message": message})
}

func (f *fakeBookingAPI) userFor(r *http.Request) (models.User, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || f.revoked[token] {
		return models.User{}, false
	}
	for _, acct := range f.accounts {
		if "token-"+acct.user.ID == token {
			return acct.user, true
		}
	}
	return models.User{}, false
}

func (f *fakeBookingAPI) handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		f.mu.Lock()
		acct, ok := f.accounts[creds.Email]
		f.mu.Unlock()
		if !ok || acct.password != creds.Password {
			writeAPIError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeEnvelope(w, http.StatusOK, models.AuthResult{Token: "token-" + acct.user.ID, User: &acct.user}, nil)
	}).Methods("POST")

	r.HandleFunc("/properties/featured", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var out []models.Property
		for _, p := range f.properties {
			if p.Featured {
				out = append(out, p)
			}
		}
		writeEnvelope(w, http.StatusOK, out, nil)
	}).Methods("GET")

	r.HandleFunc("/properties", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var out []models.Property
		for _, p := range f.properties {
			out = append(out, p)
		}
		writeEnvelope(w, http.StatusOK, out, map[string]interface{}{
			"pagination": models.Pagination{Page: 1, Limit: 12, Total: len(out), Pages: 1},
		})
	}).Methods("GET")

	r.HandleFunc("/properties/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		p, ok := f.properties[mux.Vars(r)["id"]]
		f.mu.Unlock()
		if !ok {
			writeAPIError(w, http.StatusNotFound, "Property not found")
			return
		}
		writeEnvelope(w, http.StatusOK, p, nil)
	}).Methods("GET")

	r.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.userFor(r); !ok {
			writeAPIError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		var req models.CreateBookingRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.created++
		writeEnvelope(w, http.StatusCreated, models.Booking{
			ID:            "b1",
			Property:      models.PropertyRef{ID: req.Property},
			Status:        models.BookingPending,
			PaymentStatus: models.PaymentPending,
		}, nil)
	}).Methods("POST")

	r.HandleFunc("/bookings/{id}/pay", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.payError != "" {
			writeAPIError(w, http.StatusPaymentRequired, f.payError)
			return
		}
		f.paid++
		writeEnvelope(w, http.StatusOK, models.Booking{
			ID:            mux.Vars(r)["id"],
			Status:        models.BookingConfirmed,
			PaymentStatus: models.PaymentPaid,
		}, nil)
	}).Methods("PUT")

	r.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.userFor(r); !ok {
			writeAPIError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		writeEnvelope(w, http.StatusOK, []models.Booking{{
			ID:         "b0",
			Property:   models.PropertyRef{ID: "p1", Property: &models.Property{ID: "p1", Title: "Seaside Villa"}},
			CheckIn:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC),
			Guests:     models.Guests{Adults: 2},
			TotalPrice: 450,
			Status:     models.BookingCompleted,
		}}, nil)
	}).Methods("GET")

	r.HandleFunc("/bookings/admin/all", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []models.Booking{}, map[string]interface{}{
			"pagination": models.Pagination{Page: 1, Limit: 50, Total: 0, Pages: 0},
		})
	}).Methods("GET")

	r.HandleFunc("/enquiries", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []models.Enquiry{}, map[string]interface{}{
			"pagination": models.Pagination{Page: 1, Limit: 50, Total: 0, Pages: 0},
		})
	}).Methods("GET")

	r.HandleFunc("/enquiries", func(w http.ResponseWriter, r *http.Request) {
		var req models.EnquiryRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.enquiries = append(f.enquiries, req)
		f.mu.Unlock()
		writeEnvelope(w, http.StatusCreated, models.Enquiry{ID: "e1", Name: req.Name}, nil)
	}).Methods("POST")

	return r
}

type testSite struct {
	app    *App
	api    *fakeBookingAPI
	server *httptest.Server
	client *http.Client
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()

	fake := newFakeBookingAPI()
	apiServer := httptest.NewServer(fake.handler())
	t.Cleanup(apiServer.Close)

	config := &Config{
		SessionSecret:      []byte(strings.Repeat("s", 32)),
		CSRFKey:            []byte(strings.Repeat("k", 32)),
		APIBaseURL:         apiServer.URL,
		APITimeout:         5 * time.Second,
		Environment:        "test",
		SessionMaxAge:      3600,
		TemplateDir:        "templates",
		StaticDir:          "static",
		SessionBackend:     "cookie",
		AllowReversedDates: true,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app, err := NewApp(ctx, config)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	server := httptest.NewServer(app.Router())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testSite{
		app:    app,
		api:    fake,
		server: server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (s *testSite) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.Get(s.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (s *testSite) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.PostForm(s.server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (s *testSite) login(t *testing.T, email, password string) {
	t.Helper()
	resp, _ := s.post(t, "/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHomeListsFeaturedProperties(t *testing.T) {
	site := newTestSite(t)

	resp, body := site.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Seaside Villa")
	assert.Contains(t, body, "Sign in")
}

func TestLoginSuccessShowsUser(t *testing.T) {
	site := newTestSite(t)
	site.login(t, "guest@example.com", "secret1")

	_, body := site.get(t, "/")
	assert.Contains(t, body, "Grace Guest")
	assert.Contains(t, body, "My Bookings")
	assert.NotContains(t, body, `href="/admin"`)
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	site := newTestSite(t)

	resp, body := site.post(t, "/login", url.Values{"email": {"guest@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password")

	resp, _ = site.get(t, "/bookings")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginValidationErrors(t *testing.T) {
	site := newTestSite(t)

	resp, body := site.post(t, "/login", url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Please provide a valid email")
	assert.Contains(t, body, "Password is required")
}

func TestProtectedPageRedirectsAnonymousToLogin(t *testing.T) {
	site := newTestSite(t)

	for _, path := range []string{"/bookings", "/profile", "/admin", "/admin/bookings"} {
		resp, _ := site.get(t, path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestAdminGateRedirectsNonAdminHome(t *testing.T) {
	site := newTestSite(t)
	site.login(t, "guest@example.com", "secret1")

	resp, body := site.get(t, "/admin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.NotContains(t, body, "Dashboard")
	assert.Equal(t, 1.0, testutil.ToFloat64(site.app.Metrics.GateRedirects.WithLabelValues("redirect-home")))
}

func TestAdminDashboardRendersForAdmin(t *testing.T) {
	site := newTestSite(t)
	site.login(t, "admin@example.com", "secret2")

	resp, body := site.get(t, "/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Dashboard")
	assert.Contains(t, body, "Recent bookings")
}

func TestPropertyDetailShowsQuote(t *testing.T) {
	site := newTestSite(t)

	resp, body := site.get(t, "/properties/p1?checkIn=2026-12-01&checkOut=2026-12-04")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "$200 x 3 nights")
	assert.Contains(t, body, "$600")
	assert.Contains(t, body, "Cleaning fee")
	assert.NotContains(t, body, "Service fee")
	assert.Contains(t, body, "$650")
	assert.Contains(t, body, "Sign in to book")
}

func TestUnknownPropertyRedirectsToListing(t *testing.T) {
	site := newTestSite(t)

	resp, _ := site.get(t, "/properties/missing")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/properties", resp.Header.Get("Location"))
}

func bookingForm() url.Values {
	return url.Values{
		"checkIn":  {"2026-12-01"},
		"checkOut": {"2026-12-04"},
		"adults":   {"2"},
		"children": {"0"},
	}
}

func TestBookingRequiresLogin(t *testing.T) {
	site := newTestSite(t)

	resp, _ := site.post(t, "/properties/p1/book", bookingForm())
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	created, _ := site.api.calls()
	assert.Zero(t, created)
}

func TestBookingSuccessSchedulesRedirect(t *testing.T) {
	site := newTestSite(t)
	site.login(t, "guest@example.com", "secret1")

	resp, body := site.post(t, "/properties/p1/book", bookingForm())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Booking confirmed!")
	assert.Equal(t, "2; url=/bookings", resp.Header.Get("Refresh"))
	created, paid := site.api.calls()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, paid)
	assert.Equal(t, 1.0, testutil.ToFloat64(site.app.Metrics.BookingsTotal.WithLabelValues("confirmed")))
}

func TestBookingPaymentFailureLeavesBookingUnpaid(t *testing.T) {
	site := newTestSite(t)
	site.api.mu.Lock()
	site.api.payError = "Card declined"
	site.api.mu.Unlock()
	site.login(t, "guest@example.com", "secret1")

	resp, body := site.post(t, "/properties/p1/book", bookingForm())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Card declined")
	assert.NotContains(t, body, "Booking confirmed!")
	assert.Empty(t, resp.Header.Get("Refresh"))
	created, paid := site.api.calls()
	assert.Equal(t, 1, created)
	assert.Zero(t, paid)
	assert.Equal(t, 1.0, testutil.ToFloat64(site.app.Metrics.UnpaidBookings))
}

func TestBookingRejectsTooManyGuests(t *testing.T) {
	site := newTestSite(t)
	site.login(t, "guest@example.com", "secret1")

	form := bookingForm()
	form.Set("adults", "4")
	form.Set("children", "2")

	resp, body := site.post(t, "/properties/p1/book", form)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "accommodates up to 4 guests")
	created, _ := site.api.calls()
	assert.Zero(t, created)
}

func TestBookingRequiresAdults(t *testing.T) {
	site := newTestSite(t)
	site.login(t, "guest@example.com", "secret1")

	form := bookingForm()
	form.Del("adults")

	resp, body := site.post(t, "/properties/p1/book", form)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Number of adults is required")
}

func TestMyBookingsSignsOutWhenTokenRejected(t *testing.T) {
	site := newTestSite(t)
	site.login(t, "guest@example.com", "secret1")

	resp, body := site.get(t, "/bookings")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Past stays")

	site.api.mu.Lock()
	site.api.revoked["token-u1"] = true
	site.api.mu.Unlock()

	resp, _ = site.get(t, "/bookings")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, body = site.get(t, "/")
	assert.NotContains(t, body, "Grace Guest")
}

func TestLogoutClearsSession(t *testing.T) {
	site := newTestSite(t)
	site.login(t, "guest@example.com", "secret1")

	resp, _ := site.post(t, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := site.get(t, "/")
	assert.Contains(t, body, "You have been signed out.")
	assert.NotContains(t, body, "Grace Guest")

	resp, _ = site.get(t, "/bookings")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestCorruptSessionCookieIsCleared(t *testing.T) {
	site := newTestSite(t)

	req, err := http.NewRequest(http.MethodGet, site.server.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "garbage"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Sign in")
}

func TestEnquirySendsAndFlashes(t *testing.T) {
	site := newTestSite(t)

	resp, _ := site.post(t, "/properties/p1/enquiry", url.Values{
		"name":    {"Pat"},
		"email":   {"pat@example.com"},
		"message": {"Is the pool heated?"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	sent := site.api.sentEnquiries()
	require.Len(t, sent, 1)
	assert.Equal(t, "General Enquiry", sent[0].Subject)
	assert.Equal(t, "p1", sent[0].Property)
}

func TestQuoteEndpoint(t *testing.T) {
	site := newTestSite(t)

	resp, body := site.get(t, "/api/properties/p1/quote?checkIn=2026-12-01&checkOut=2026-12-03")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.True(t, json.Valid([]byte(body)))
	assert.Contains(t, body, `"nights":2`)
	assert.Contains(t, body, `"total":450`)
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	site := newTestSite(t)

	resp, body := site.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	site.get(t, "/properties")
	resp, body = site.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "rental_http_requests_total")

	resp, body = site.get(t, "/no-such-page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")
}
