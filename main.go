package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"vacationRentalWebsite/internal/api"
	"vacationRentalWebsite/internal/export"
	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/internal/services"
	"vacationRentalWebsite/internal/storage"
)

const (
	sessionCookieName = "rental-session"
	featuredCacheTTL  = 2 * time.Minute
)

// BookingsExporter pushes the admin booking list to an external sheet
type BookingsExporter interface {
	ExportBookings(ctx context.Context, bookings []models.Booking) (string, error)
}

type App struct {
	Config     *Config
	API        *api.Client
	Sessions   storage.Backend
	FlashStore *sessions.CookieStore
	Bookings   *services.BookingService
	Catalog    *services.Catalog
	Metrics    *Metrics
	Limiters   *Limiters
	Templates  *TemplateCache
	Exporter   BookingsExporter
}

// NewApp wires every dependency described by config
func NewApp(ctx context.Context, config *Config) (*App, error) {
	cookieStore := sessions.NewCookieStore(config.SessionSecret)
	cookieStore.MaxAge(config.SessionMaxAge)
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   config.SessionMaxAge,
		HttpOnly: true,
		Secure:   config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	backend, err := openSessionBackend(ctx, config, cookieStore)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(config.APIBaseURL, config.APITimeout)

	app := &App{
		Config:     config,
		API:        client,
		Sessions:   backend,
		FlashStore: newFlashStore(config.SessionSecret, config.IsProduction()),
		Bookings:   services.NewBookingService(client, services.DatePolicy{AllowReversed: config.AllowReversedDates}),
		Catalog:    services.NewCatalog(client, featuredCacheTTL),
		Metrics:    NewMetrics(),
		Limiters:   NewLimiters(),
		Templates:  NewTemplateCache(config.TemplateDir),
	}

	app.Bookings.OnUnpaid(func(bookingID string, err error) {
		app.Metrics.UnpaidBookings.Inc()
		AppLogger.WithError(err).WithField("booking_id", bookingID).
			Warn("Booking created but payment failed; left unpaid for follow-up")
	})

	if config.SheetsExportEnabled() {
		exporter, err := export.NewSheetsExporter(ctx, config.GoogleCredentialsFile, config.BookingsSheetID, config.BookingsSheetRange)
		if err != nil {
			AppLogger.WithError(err).Warn("Google Sheets export disabled")
		} else {
			app.Exporter = exporter
		}
	}

	AppLogger.WithFields(map[string]interface{}{
		"api_base_url":    config.APIBaseURL,
		"session_backend": config.SessionBackend,
		"session_max_age": config.SessionMaxAge,
		"secure_cookies":  config.IsProduction(),
		"sheets_export":   app.Exporter != nil,
	}).Info("Application configured")

	return app, nil
}

func openSessionBackend(ctx context.Context, config *Config, cookies *sessions.CookieStore) (storage.Backend, error) {
	ttl := time.Duration(config.SessionMaxAge) * time.Second

	switch config.SessionBackend {
	case "sqlite":
		values, err := storage.OpenSQLite(config.SessionDBPath)
		if err != nil {
			return nil, fmt.Errorf("open session database: %w", err)
		}
		return storage.NewServerBackend(cookies, sessionCookieName, values, ttl), nil
	case "redis":
		values, err := storage.NewRedisValues(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connect session redis: %w", err)
		}
		return storage.NewServerBackend(cookies, sessionCookieName, values, ttl), nil
	default:
		return storage.NewCookieBackend(cookies, sessionCookieName), nil
	}
}

// Close releases the session backend and background caches
func (app *App) Close() error {
	app.Catalog.Close()
	return app.Sessions.Close()
}

// protect wraps a handler with the access gate for role
func (app *App) protect(role models.Role, h http.HandlerFunc) http.Handler {
	return app.RequireSession(role)(h)
}

// Router builds the full route table. CSRF protection is applied by the
// caller around the returned handler.
func (app *App) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(app.RecoveryMiddleware)
	r.Use(app.RequestIDMiddleware)
	r.Use(app.LoggingMiddleware)
	r.Use(app.Metrics.Middleware)
	r.Use(app.RateLimitMiddleware)
	r.Use(app.SessionMiddleware)

	r.HandleFunc("/", app.handleHome).Methods("GET")
	r.HandleFunc("/properties", app.handleProperties).Methods("GET")
	r.HandleFunc("/properties/{id}", app.handlePropertyDetail).Methods("GET")
	r.HandleFunc("/properties/{id}/book", app.handleBookProperty).Methods("POST")
	r.HandleFunc("/properties/{id}/enquiry", app.handlePropertyEnquiry).Methods("POST")
	r.HandleFunc("/api/properties/{id}/quote", app.handleQuote).Methods("GET")

	r.HandleFunc("/login", app.handleLoginPage).Methods("GET")
	r.HandleFunc("/login", app.handleLogin).Methods("POST")
	r.HandleFunc("/register", app.handleRegisterPage).Methods("GET")
	r.HandleFunc("/register", app.handleRegister).Methods("POST")
	r.HandleFunc("/logout", app.handleLogout).Methods("POST")
	r.Handle("/profile", app.protect("", app.handleProfilePage)).Methods("GET")
	r.Handle("/profile", app.protect("", app.handleProfileUpdate)).Methods("POST")
	r.Handle("/bookings", app.protect("", app.handleMyBookings)).Methods("GET")

	r.Handle("/admin", app.protect(models.RoleAdmin, app.handleAdminDashboard)).Methods("GET")
	r.Handle("/admin/properties", app.protect(models.RoleAdmin, app.handleAdminProperties)).Methods("GET")
	r.Handle("/admin/properties", app.protect(models.RoleAdmin, app.handleAdminCreateProperty)).Methods("POST")
	r.Handle("/admin/properties/new", app.protect(models.RoleAdmin, app.handleAdminNewProperty)).Methods("GET")
	r.Handle("/admin/properties/{id}/edit", app.protect(models.RoleAdmin, app.handleAdminEditProperty)).Methods("GET")
	r.Handle("/admin/properties/{id}", app.protect(models.RoleAdmin, app.handleAdminUpdateProperty)).Methods("POST")
	r.Handle("/admin/properties/{id}/delete", app.protect(models.RoleAdmin, app.handleAdminDeleteProperty)).Methods("POST")
	r.Handle("/admin/bookings", app.protect(models.RoleAdmin, app.handleAdminBookings)).Methods("GET")
	r.Handle("/admin/bookings/{id}/status", app.protect(models.RoleAdmin, app.handleAdminBookingStatus)).Methods("POST")
	r.Handle("/admin/bookings/export.xlsx", app.protect(models.RoleAdmin, app.handleAdminBookingsXLSX)).Methods("GET")
	r.Handle("/admin/bookings/export/sheets", app.protect(models.RoleAdmin, app.handleAdminBookingsSheets)).Methods("POST")
	r.Handle("/admin/enquiries", app.protect(models.RoleAdmin, app.handleAdminEnquiries)).Methods("GET")
	r.Handle("/admin/enquiries/{id}/status", app.protect(models.RoleAdmin, app.handleAdminEnquiryStatus)).Methods("POST")

	r.HandleFunc("/healthz", app.handleHealth).Methods("GET")
	r.Handle("/metrics", app.Metrics.Handler()).Methods("GET")
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(app.Config.StaticDir))))

	r.NotFoundHandler = app.RequestIDMiddleware(app.SessionMiddleware(http.HandlerFunc(app.handleNotFound)))

	return r
}

// protectCSRF wraps h with gorilla/csrf. Outside production requests are
// marked as plaintext so local http:// origins pass the referer check.
func (app *App) protectCSRF(h http.Handler) http.Handler {
	protect := csrf.Protect(app.Config.CSRFKey,
		csrf.Secure(app.Config.IsProduction()),
		csrf.Path("/"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(app.handleCSRFFailure)),
	)(h)

	if app.Config.IsProduction() {
		return protect
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protect.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (app *App) handleNotFound(w http.ResponseWriter, r *http.Request) {
	app.renderPage(w, r, http.StatusNotFound, "not_found", nil)
}

func (app *App) handleCSRFFailure(w http.ResponseWriter, r *http.Request) {
	AppLogger.WithError(csrf.FailureReason(r)).WithField("path", r.URL.Path).Warn("CSRF validation failed")
	http.Error(w, "Forbidden - invalid or missing form token, reload the page and try again", http.StatusForbidden)
}

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	InitializeLogger(config)
	defer AppLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, config)
	if err != nil {
		AppLogger.WithError(err).Fatal("Failed to initialize application")
	}
	defer app.Close()

	app.Limiters.Start(ctx)

	server := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           app.protectCSRF(app.Router()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(AppLogger.Zap()),
	}

	go func() {
		AppLogger.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			AppLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	AppLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		AppLogger.WithError(err).Error("Graceful shutdown failed")
	}
}
