package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/utils"
)

type adminEnquiriesPage struct {
	Enquiries  []models.Enquiry
	Total      int
	Statuses   []models.EnquiryStatus
	LoadFailed bool
}

func (app *App) handleAdminEnquiries(w http.ResponseWriter, r *http.Request) {
	state := utils.SessionState(r)
	page := adminEnquiriesPage{Statuses: models.EnquiryStatuses}

	enquiries, pagination, err := app.API.ListEnquiries(r.Context(), state.Token, models.ListQuery{Limit: adminListLimit})
	if err != nil {
		app.expireIfUnauthorized(r, err)
		AppLogger.WithError(err).WithField("request_id", utils.GetRequestID(r)).Warn("Failed to list enquiries")
		page.LoadFailed = true
	} else {
		page.Enquiries = enquiries
		page.Total = len(enquiries)
		if pagination != nil {
			page.Total = pagination.Total
		}
	}

	app.renderPage(w, r, http.StatusOK, "admin_enquiries", page)
}

func (app *App) handleAdminEnquiryStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	status := models.EnquiryStatus(sanitize(r.PostFormValue("status")))
	if !status.Valid() {
		app.redirectWithFlash(w, r, "/admin/enquiries", FlashError, "Unknown enquiry status.")
		return
	}

	state := utils.SessionState(r)
	if _, err := app.API.UpdateEnquiryStatus(r.Context(), state.Token, id, status); err != nil {
		app.adminWriteFailed(w, r, err, "/admin/enquiries", "update enquiry")
		return
	}

	app.redirectWithFlash(w, r, "/admin/enquiries", FlashSuccess, fmt.Sprintf("Enquiry marked %s.", status))
}
