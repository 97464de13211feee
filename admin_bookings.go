package main

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"vacationRentalWebsite/internal/export"
	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/utils"
)

// exportLimit caps how many bookings one export pulls from the API
const exportLimit = 1000

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type adminBookingsPage struct {
	Bookings      []models.Booking
	Total         int
	Statuses      []models.BookingStatus
	SheetsEnabled bool
	LoadFailed    bool
}

func (app *App) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	state := utils.SessionState(r)
	page := adminBookingsPage{
		Statuses:      models.BookingStatuses,
		SheetsEnabled: app.Exporter != nil,
	}

	bookings, pagination, err := app.API.AllBookings(r.Context(), state.Token, models.ListQuery{Limit: adminListLimit, Sort: defaultListingSort})
	if err != nil {
		app.expireIfUnauthorized(r, err)
		AppLogger.WithError(err).WithField("request_id", utils.GetRequestID(r)).Warn("Failed to list bookings for admin")
		page.LoadFailed = true
	} else {
		page.Bookings = bookings
		page.Total = len(bookings)
		if pagination != nil {
			page.Total = pagination.Total
		}
	}

	app.renderPage(w, r, http.StatusOK, "admin_bookings", page)
}

func (app *App) handleAdminBookingStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	status := models.BookingStatus(sanitize(r.PostFormValue("status")))
	if !status.Valid() {
		app.redirectWithFlash(w, r, "/admin/bookings", FlashError, "Unknown booking status.")
		return
	}

	state := utils.SessionState(r)
	if _, err := app.API.UpdateBookingStatus(r.Context(), state.Token, id, status); err != nil {
		app.adminWriteFailed(w, r, err, "/admin/bookings", "update booking status")
		return
	}

	AppLogger.WithFields(map[string]interface{}{
		"request_id": utils.GetRequestID(r),
		"booking_id": id,
		"status":     string(status),
	}).Info("Booking status changed")
	app.redirectWithFlash(w, r, "/admin/bookings", FlashSuccess, fmt.Sprintf("Booking marked %s.", status))
}

func (app *App) exportableBookings(r *http.Request) ([]models.Booking, error) {
	state := utils.SessionState(r)
	bookings, _, err := app.API.AllBookings(r.Context(), state.Token, models.ListQuery{Limit: exportLimit, Sort: defaultListingSort})
	return bookings, err
}

func (app *App) handleAdminBookingsXLSX(w http.ResponseWriter, r *http.Request) {
	bookings, err := app.exportableBookings(r)
	if err != nil {
		app.adminWriteFailed(w, r, err, "/admin/bookings", "load bookings for export")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookingsXLSX(&buf, bookings); err != nil {
		AppLogger.WithError(err).Error("Failed to build bookings workbook")
		app.redirectWithFlash(w, r, "/admin/bookings", FlashError, "Could not build the spreadsheet.")
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (app *App) handleAdminBookingsSheets(w http.ResponseWriter, r *http.Request) {
	if app.Exporter == nil {
		app.redirectWithFlash(w, r, "/admin/bookings", FlashError, "Google Sheets export is not configured.")
		return
	}

	bookings, err := app.exportableBookings(r)
	if err != nil {
		app.adminWriteFailed(w, r, err, "/admin/bookings", "load bookings for export")
		return
	}

	updated, err := app.Exporter.ExportBookings(r.Context(), bookings)
	if err != nil {
		AppLogger.WithError(err).WithField("request_id", utils.GetRequestID(r)).Error("Google Sheets export failed")
		app.redirectWithFlash(w, r, "/admin/bookings", FlashError, "Google Sheets export failed. Please try again.")
		return
	}

	AppLogger.WithFields(map[string]interface{}{
		"request_id": utils.GetRequestID(r),
		"rows":       len(bookings),
		"range":      updated,
	}).Info("Bookings exported to Google Sheets")
	app.redirectWithFlash(w, r, "/admin/bookings", FlashSuccess,
		fmt.Sprintf("Exported %d bookings to Google Sheets (%s).", len(bookings), updated))
}
