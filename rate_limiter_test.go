package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBurstAndRefill(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(60, 3)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "clients have separate buckets")

	now = now.Add(2 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(60, 3)
	rl.now = func() time.Time { return now }

	rl.Allow("1.2.3.4")
	now = now.Add(11 * time.Minute)
	rl.Cleanup()
	assert.Empty(t, rl.buckets)
}

func TestLimiterCategory(t *testing.T) {
	r := mux.NewRouter()
	var got string
	record := func(w http.ResponseWriter, r *http.Request) { got = limiterCategory(r) }
	r.HandleFunc("/login", record)
	r.HandleFunc("/properties/{id}/book", record)
	r.HandleFunc("/properties/{id}/enquiry", record)
	r.HandleFunc("/properties/{id}", record)

	tests := []struct {
		method, path, want string
	}{
		{http.MethodPost, "/login", "auth"},
		{http.MethodGet, "/login", "general"},
		{http.MethodPost, "/properties/p1/book", "booking"},
		{http.MethodPost, "/properties/p1/enquiry", "booking"},
		{http.MethodGet, "/properties/p1", "general"},
	}
	for _, tt := range tests {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, got, tt.method+" "+tt.path)
	}
}

func TestGetRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getRealIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", getRealIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", getRealIP(r))
}

func TestRateLimitMiddlewareRejectsLogins(t *testing.T) {
	site := newTestSite(t)
	site.app.Limiters.Auth = NewRateLimiter(1, 1)

	resp, _ := site.post(t, "/login", nil)
	assert.NotEqual(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = site.post(t, "/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
