package main

import (
	"net/http"
	"sort"
	"time"

	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/utils"
)

type myBookingsPage struct {
	Upcoming   []models.Booking
	Past       []models.Booking
	LoadFailed bool
}

// splitBookings separates stays that have not ended yet from finished ones.
// Upcoming stays are listed soonest first, past stays most recent first.
func splitBookings(bookings []models.Booking, now time.Time) (upcoming, past []models.Booking) {
	for _, b := range bookings {
		if b.CheckOut.IsZero() || b.CheckOut.After(now) {
			upcoming = append(upcoming, b)
		} else {
			past = append(past, b)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].CheckIn.Before(upcoming[j].CheckIn) })
	sort.SliceStable(past, func(i, j int) bool { return past[i].CheckIn.After(past[j].CheckIn) })
	return upcoming, past
}

func (app *App) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	state := utils.SessionState(r)

	var page myBookingsPage
	bookings, err := app.API.MyBookings(r.Context(), state.Token)
	if err != nil {
		app.expireIfUnauthorized(r, err)
		AppLogger.WithError(err).WithField("request_id", utils.GetRequestID(r)).Warn("Failed to load bookings")
		page.LoadFailed = true
	} else {
		page.Upcoming, page.Past = splitBookings(bookings, time.Now())
	}

	app.renderPage(w, r, http.StatusOK, "bookings", page)
}
