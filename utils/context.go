package utils

import (
	"context"
	"net/http"

	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/internal/services"
)

// Context keys shared by middleware and handlers
type contextKey string

const (
	SessionKey   contextKey = "session"
	RequestIDKey contextKey = "request_id"
	GuardKey     contextKey = "gate_guard"
)

// WithSession attaches the request's session manager
func WithSession(ctx context.Context, m *services.SessionManager) context.Context {
	return context.WithValue(ctx, SessionKey, m)
}

// GetSession extracts the session manager from request context
func GetSession(r *http.Request) (*services.SessionManager, bool) {
	m, ok := r.Context().Value(SessionKey).(*services.SessionManager)
	return m, ok && m != nil
}

// SessionState returns a snapshot of the request's session, or a signed-out
// state when no session is attached.
func SessionState(r *http.Request) services.State {
	if m, ok := GetSession(r); ok {
		return m.Snapshot()
	}
	return services.State{}
}

// GetUser returns the signed-in user, if any
func GetUser(r *http.Request) (*models.User, bool) {
	s := SessionState(r)
	return s.User, s.IsAuthenticated()
}

// IsAuthenticated checks if user is authenticated
func IsAuthenticated(r *http.Request) bool {
	return SessionState(r).IsAuthenticated()
}

// IsAdmin checks if the signed-in user has the admin role
func IsAdmin(r *http.Request) bool {
	s := SessionState(r)
	return s.IsAuthenticated() && s.User.IsAdmin()
}

// WithRequestID attaches a request id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID extracts the request id, or "" if none
func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(RequestIDKey).(string)
	return id
}

// WithGuard attaches the access gate guarding the current view
func WithGuard(ctx context.Context, g *services.Guard) context.Context {
	return context.WithValue(ctx, GuardKey, g)
}

// GetGuard returns the view's guard, if the route is protected
func GetGuard(r *http.Request) (*services.Guard, bool) {
	g, ok := r.Context().Value(GuardKey).(*services.Guard)
	return g, ok && g != nil
}
