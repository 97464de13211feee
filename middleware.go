package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/internal/services"
	"vacationRentalWebsite/utils"
)

const requestIDHeader = "X-Request-ID"

func (app *App) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		entry := AppLogger.WithFields(map[string]interface{}{
			"request_id":  utils.GetRequestID(r),
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": duration.Milliseconds(),
			"status_code": wrapper.statusCode,
			"remote_addr": r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		})

		switch {
		case wrapper.statusCode >= 500:
			entry.Error("HTTP request failed")
		case wrapper.statusCode >= 400:
			entry.Warn("HTTP request rejected")
		default:
			entry.Info("HTTP request completed")
		}
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *responseWriterWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RequestIDMiddleware reuses an inbound X-Request-ID or mints a new one
func (app *App) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(utils.WithRequestID(r.Context(), id)))
	})
}

// SessionMiddleware restores the browser's session once per request and
// attaches it to the request context. Corrupt sessions are cleared silently.
func (app *App) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionless(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		store := app.Sessions.Open(w, r)
		session := services.NewSessionManager(store, app.API)

		if err := session.Restore(); err != nil {
			app.Metrics.SessionRepairs.Inc()
			AppLogger.WithError(err).WithFields(map[string]interface{}{
				"request_id": utils.GetRequestID(r),
				"path":       r.URL.Path,
			}).Warn("Cleared unusable session")
		}

		next.ServeHTTP(w, r.WithContext(utils.WithSession(r.Context(), session)))
	})
}

// sessionless paths never read or repair the session store
func sessionless(path string) bool {
	return strings.HasPrefix(path, "/static/") || path == "/metrics" || path == "/healthz"
}

// RequireSession runs the access gate in front of a protected view. An empty
// role only requires a signed-in user.
func (app *App) RequireSession(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := utils.GetSession(r)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			guard := services.NewGuard(session, role, nil)
			defer guard.Close()

			switch decision := guard.Decision(); decision {
			case services.DecisionRender:
				next.ServeHTTP(w, r.WithContext(utils.WithGuard(r.Context(), guard)))
			case services.DecisionLoading:
				w.Header().Set("Refresh", "1")
				app.renderPage(w, r, http.StatusOK, "loading", nil)
			default:
				app.Metrics.GateRedirects.WithLabelValues(decision.String()).Inc()
				AppLogger.WithFields(map[string]interface{}{
					"request_id": utils.GetRequestID(r),
					"path":       r.URL.Path,
					"decision":   decision.String(),
					"role":       string(role),
				}).Debug("Access gate redirect")
				http.Redirect(w, r, decision.Target(), http.StatusFound)
			}
		})
	}
}

// RecoveryMiddleware turns handler panics into a 500 page
func (app *App) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				AppLogger.WithFields(map[string]interface{}{
					"request_id":  utils.GetRequestID(r),
					"method":      r.Method,
					"path":        r.URL.Path,
					"panic":       fmt.Sprintf("%v", rec),
					"remote_addr": r.RemoteAddr,
				}).Error("Panic recovered in HTTP handler")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
