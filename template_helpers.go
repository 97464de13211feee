package main

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/internal/services"
	"vacationRentalWebsite/utils"
)

// TemplateCache holds parsed templates with inheritance support
type TemplateCache struct {
	dir       string
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateCache creates a cache reading page templates from dir
func NewTemplateCache(dir string) *TemplateCache {
	return &TemplateCache{
		dir:       dir,
		templates: make(map[string]*template.Template),
	}
}

// GetTemplate returns a cached template or loads it if not cached
func (tc *TemplateCache) GetTemplate(name string) (*template.Template, error) {
	tc.mutex.RLock()
	tmpl, exists := tc.templates[name]
	tc.mutex.RUnlock()

	if exists {
		return tmpl, nil
	}

	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tmpl, exists := tc.templates[name]; exists {
		return tmpl, nil
	}

	templatePath := filepath.Join(tc.dir, name+".html")
	basePath := filepath.Join(tc.dir, "base.html")
	partials, err := filepath.Glob(filepath.Join(tc.dir, "partials", "*.html"))
	if err != nil {
		return nil, err
	}

	files := append([]string{basePath, templatePath}, partials...)
	tmpl, err = template.New("").Funcs(CreateTemplateFuncMap()).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	tc.templates[name] = tmpl
	return tmpl, nil
}

// RenderTemplate executes the page into a buffer first so a failing
// template never produces a half-written response.
func (tc *TemplateCache) RenderTemplate(w http.ResponseWriter, status int, name string, data interface{}) error {
	tmpl, err := tc.GetTemplate(name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// ClearCache clears the template cache (useful for development)
func (tc *TemplateCache) ClearCache() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.templates = make(map[string]*template.Template)
}

// Money formats an amount the way prices are shown on the site
func Money(amount float64) string {
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("$%d", int64(amount))
	}
	return fmt.Sprintf("$%.2f", amount)
}

// FormatDate renders a date for display, or a dash when unset
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

// StatusClass maps booking, payment, property and enquiry statuses to a badge class
func StatusClass(status interface{}) string {
	switch fmt.Sprint(status) {
	case "confirmed", "paid", "active", "responded", "completed":
		return "badge badge-success"
	case "pending", "new", "maintenance":
		return "badge badge-warning"
	case "cancelled", "failed", "inactive", "closed":
		return "badge badge-danger"
	default:
		return "badge"
	}
}

// Humanize turns "beach-house" or "air-conditioning" into "Beach house"
func Humanize(s interface{}) string {
	text := strings.ReplaceAll(fmt.Sprint(s), "-", " ")
	if text == "" {
		return ""
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

// Truncate truncates a string to specified length
func Truncate(text string, length int) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	return string(runes[:length]) + "..."
}

// Join joins a slice of strings with separator
func Join(items []string, separator string) string {
	return strings.Join(items, separator)
}

// PageNumbers lists 1..pages for pagination links
func PageNumbers(pages int) []int {
	out := make([]int, 0, pages)
	for i := 1; i <= pages; i++ {
		out = append(out, i)
	}
	return out
}

// CreateTemplateFuncMap creates a function map for templates
func CreateTemplateFuncMap() template.FuncMap {
	return template.FuncMap{
		"money":       Money,
		"date":        FormatDate,
		"statusClass": StatusClass,
		"humanize":    Humanize,
		"truncate":    Truncate,
		"join":        Join,
		"pages":       PageNumbers,
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
	}
}

// TemplateData represents the common data structure for all templates
type TemplateData struct {
	User            *models.User
	IsAuthenticated bool
	IsAdmin         bool

	CSRFField template.HTML
	RequestID string

	Flash     string
	FlashKind string

	// RefreshURL and RefreshAfter drive a delayed client redirect
	RefreshURL   string
	RefreshAfter int

	PageData interface{}
}

const (
	flashSessionName = "rental-flash"
	flashKindKey     = "flash_kind"
)

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// setFlash queues a one-shot message for the next rendered page
func (app *App) setFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	session, err := app.FlashStore.Get(r, flashSessionName)
	if err != nil {
		session, _ = app.FlashStore.New(r, flashSessionName)
	}
	session.AddFlash(message)
	session.Values[flashKindKey] = kind
	if err := session.Save(r, w); err != nil {
		AppLogger.WithError(err).Warn("Failed to save flash message")
	}
}

// popFlash returns and clears the queued message, if any
func (app *App) popFlash(w http.ResponseWriter, r *http.Request) (string, string) {
	session, err := app.FlashStore.Get(r, flashSessionName)
	if err != nil || session.IsNew {
		return "", ""
	}
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return "", ""
	}
	kind, _ := session.Values[flashKindKey].(string)
	delete(session.Values, flashKindKey)
	session.Save(r, w)

	msg, _ := flashes[0].(string)
	return msg, kind
}

// BuildTemplateData collects the per-request values every page needs
func (app *App) BuildTemplateData(w http.ResponseWriter, r *http.Request, pageData interface{}) *TemplateData {
	state := utils.SessionState(r)

	data := &TemplateData{
		IsAuthenticated: state.IsAuthenticated(),
		CSRFField:       csrf.TemplateField(r),
		RequestID:       utils.GetRequestID(r),
		PageData:        pageData,
	}
	if data.IsAuthenticated {
		data.User = state.User
		data.IsAdmin = state.User.IsAdmin()
	}
	data.Flash, data.FlashKind = app.popFlash(w, r)
	return data
}

// renderPage renders name with the shared layout. A guarded view whose gate
// decision changed while the handler ran is redirected instead.
func (app *App) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, pageData interface{}) {
	app.renderWith(w, r, status, name, app.BuildTemplateData(w, r, pageData))
}

func (app *App) renderWith(w http.ResponseWriter, r *http.Request, status int, name string, data *TemplateData) {
	if guard, ok := utils.GetGuard(r); ok {
		switch decision := guard.Decision(); decision {
		case services.DecisionRender:
		case services.DecisionLoading:
			name = "loading"
		default:
			http.Redirect(w, r, decision.Target(), http.StatusFound)
			return
		}
	}

	if err := app.Templates.RenderTemplate(w, status, name, data); err != nil {
		AppLogger.WithError(err).WithFields(map[string]interface{}{
			"request_id": utils.GetRequestID(r),
			"template":   name,
		}).Error("Failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// redirectWithFlash stores message and sends the browser to target
func (app *App) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	app.setFlash(w, r, kind, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func newFlashStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
