package main

import (
	"errors"
	"net/http"

	"vacationRentalWebsite/internal/api"
	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/internal/services"
	"vacationRentalWebsite/utils"
)

const (
	loginFailedMessage    = "Invalid credentials. Please try again."
	registerFailedMessage = "Registration failed. Please try again."
	profileFailedMessage  = "Could not update your profile. Please try again."
)

type loginPage struct {
	Form   LoginForm
	Errors FormErrors
	Error  string
}

type registerPage struct {
	Form   RegisterForm
	Errors FormErrors
	Error  string
}

type profilePage struct {
	Form   ProfileForm
	Errors FormErrors
	Error  string
}

// failureStatus picks the status for a page re-rendered after a failed API
// write. Client errors from the API pass through, anything else is a bad gateway.
func failureStatus(err error) int {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

// expireIfUnauthorized signs the session out when the API no longer accepts
// its token. Guarded views then redirect to the login page on render.
func (app *App) expireIfUnauthorized(r *http.Request, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	if session, ok := utils.GetSession(r); ok {
		session.Logout()
		AppLogger.WithField("request_id", utils.GetRequestID(r)).Info("API rejected session token, signed out")
	}
	return true
}

func (app *App) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if utils.IsAuthenticated(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	app.renderPage(w, r, http.StatusOK, "login", loginPage{Errors: FormErrors{}})
}

func (app *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	session, ok := utils.GetSession(r)
	if !ok {
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form, errs := parseLoginForm(r)
	form.Password = ""
	if len(errs) > 0 {
		app.renderPage(w, r, http.StatusUnprocessableEntity, "login", loginPage{Form: form, Errors: errs})
		return
	}

	if err := session.Login(r.Context(), form.Email, r.PostFormValue("password")); err != nil {
		AppLogger.WithError(err).WithFields(map[string]interface{}{
			"request_id": utils.GetRequestID(r),
			"email":      form.Email,
		}).Warn("Login failed")
		app.renderPage(w, r, failureStatus(err), "login", loginPage{
			Form:   form,
			Errors: FormErrors{},
			Error:  api.MessageOf(err, loginFailedMessage),
		})
		return
	}

	AppLogger.WithFields(map[string]interface{}{
		"request_id": utils.GetRequestID(r),
		"user_id":    session.Snapshot().User.ID,
	}).Info("User signed in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *App) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if utils.IsAuthenticated(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	app.renderPage(w, r, http.StatusOK, "register", registerPage{Errors: FormErrors{}})
}

func (app *App) handleRegister(w http.ResponseWriter, r *http.Request) {
	session, ok := utils.GetSession(r)
	if !ok {
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form, errs := parseRegisterForm(r)
	password := form.Password
	form.Password, form.ConfirmPassword = "", ""
	if len(errs) > 0 {
		app.renderPage(w, r, http.StatusUnprocessableEntity, "register", registerPage{Form: form, Errors: errs})
		return
	}

	if err := session.Register(r.Context(), form.Name, form.Email, password, form.Phone); err != nil {
		AppLogger.WithError(err).WithFields(map[string]interface{}{
			"request_id": utils.GetRequestID(r),
			"email":      form.Email,
		}).Warn("Registration failed")
		app.renderPage(w, r, failureStatus(err), "register", registerPage{
			Form:   form,
			Errors: FormErrors{},
			Error:  api.MessageOf(err, registerFailedMessage),
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := utils.GetSession(r); ok {
		session.Logout()
	}
	app.redirectWithFlash(w, r, "/", FlashSuccess, "You have been signed out.")
}

func (app *App) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	user, _ := utils.GetUser(r)
	app.renderPage(w, r, http.StatusOK, "profile", profilePage{
		Form:   ProfileForm{Name: user.Name, Phone: user.Phone},
		Errors: FormErrors{},
	})
}

func (app *App) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	session, _ := utils.GetSession(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form, errs := parseProfileForm(r)
	if len(errs) > 0 {
		app.renderPage(w, r, http.StatusUnprocessableEntity, "profile", profilePage{Form: form, Errors: errs})
		return
	}

	state := session.Snapshot()
	updated, err := app.API.UpdateProfile(r.Context(), state.Token, models.ProfileUpdate{Name: form.Name, Phone: form.Phone})
	if err != nil {
		app.expireIfUnauthorized(r, err)
		AppLogger.WithError(err).WithField("request_id", utils.GetRequestID(r)).Warn("Profile update failed")
		app.renderPage(w, r, failureStatus(err), "profile", profilePage{
			Form:   form,
			Errors: FormErrors{},
			Error:  api.MessageOf(err, profileFailedMessage),
		})
		return
	}

	if updated.ID == "" {
		updated.ID = state.User.ID
	}
	if updated.Role == "" {
		updated.Role = state.User.Role
	}
	if err := session.UpdateUser(updated); err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		AppLogger.WithError(err).Error("Failed to persist updated profile")
		app.renderPage(w, r, http.StatusInternalServerError, "profile", profilePage{
			Form:   form,
			Errors: FormErrors{},
			Error:  profileFailedMessage,
		})
		return
	}

	app.redirectWithFlash(w, r, "/profile", FlashSuccess, "Profile updated.")
}
