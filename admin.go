package main

import (
	"net/http"

	"vacationRentalWebsite/internal/api"
	"vacationRentalWebsite/internal/services"
	"vacationRentalWebsite/utils"
)

// adminListLimit is how many rows the admin tables fetch
const adminListLimit = 50

type dashboardPage struct {
	Stats services.DashboardStats
}

func (app *App) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	state := utils.SessionState(r)

	stats := services.LoadDashboard(r.Context(), app.API, state.Token)
	for resource, err := range stats.Failed {
		app.expireIfUnauthorized(r, err)
		AppLogger.WithError(err).WithFields(map[string]interface{}{
			"request_id": utils.GetRequestID(r),
			"resource":   resource,
		}).Warn("Dashboard figure unavailable")
	}

	app.renderPage(w, r, http.StatusOK, "admin_dashboard", dashboardPage{Stats: stats})
}

// adminWriteFailed reports a failed admin mutation on the page it came from
func (app *App) adminWriteFailed(w http.ResponseWriter, r *http.Request, err error, target, action string) {
	if app.expireIfUnauthorized(r, err) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	AppLogger.WithError(err).WithFields(map[string]interface{}{
		"request_id": utils.GetRequestID(r),
		"action":     action,
	}).Warn("Admin action failed")
	app.redirectWithFlash(w, r, target, FlashError, api.MessageOf(err, "Could not "+action+". Please try again."))
}
