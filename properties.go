package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"vacationRentalWebsite/internal/api"
	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/internal/services"
	iutils "vacationRentalWebsite/internal/utils"
	"vacationRentalWebsite/utils"
)

const (
	listingPageSize    = 12
	defaultListingSort = "-createdAt"
	enquirySentMessage = "Thanks! Your enquiry has been sent. We'll get back to you soon."
	enquiryFailed      = "Could not send your enquiry. Please try again."
)

// SortOption is one entry of the listing sort dropdown
type SortOption struct {
	Value string
	Label string
}

var listingSorts = []SortOption{
	{"-createdAt", "Newest"},
	{"price.perNight", "Price: low to high"},
	{"-price.perNight", "Price: high to low"},
	{"-rating", "Top rated"},
}

type homePage struct {
	Featured []models.Property
	Types    []models.PropertyType
}

type listingPage struct {
	Properties []models.Property
	Pagination models.Pagination
	Query      models.ListQuery
	Types      []models.PropertyType
	Sorts      []SortOption
	LoadFailed bool
}

// PageURL links to page n keeping the current filters
func (p listingPage) PageURL(n int) string {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("search", p.Query.Search)
	set("type", p.Query.Type)
	set("minPrice", p.Query.MinPrice)
	set("maxPrice", p.Query.MaxPrice)
	set("bedrooms", p.Query.Bedrooms)
	if p.Query.Sort != defaultListingSort {
		set("sort", p.Query.Sort)
	}
	v.Set("page", strconv.Itoa(n))
	return "/properties?" + v.Encode()
}

type propertyPage struct {
	Property *models.Property
	Range    services.DateRange
	Quote    services.Breakdown
	Bookable bool

	Booking       BookingForm
	BookingErrors FormErrors
	DateError     string

	// Message is the outcome of a booking attempt
	Message   string
	Confirmed bool

	Enquiry       EnquiryForm
	EnquiryErrors FormErrors
	EnquiryError  string
}

func newPropertyPage(p *models.Property, r services.DateRange) *propertyPage {
	return &propertyPage{
		Property:      p,
		Range:         r,
		Quote:         services.Quote(p, r),
		Bookable:      services.IsBookable(r.CheckIn, r.CheckOut),
		Booking:       BookingForm{CheckIn: r.CheckInValue(), CheckOut: r.CheckOutValue(), Adults: 1},
		BookingErrors: FormErrors{},
		Enquiry:       EnquiryForm{Subject: defaultEnquirySubject, Property: p.ID},
		EnquiryErrors: FormErrors{},
	}
}

func (app *App) handleHome(w http.ResponseWriter, r *http.Request) {
	featured, err := app.Catalog.Featured(r.Context())
	if err != nil {
		AppLogger.WithError(err).WithField("request_id", utils.GetRequestID(r)).Warn("Failed to load featured properties")
		featured = nil
	}

	app.renderPage(w, r, http.StatusOK, "home", homePage{
		Featured: featured,
		Types:    models.PropertyTypes,
	})
}

// listingQuery reads the filter bar. Unknown sorts and bad numbers are dropped.
func listingQuery(r *http.Request) models.ListQuery {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	query := models.ListQuery{
		Page:   page,
		Limit:  listingPageSize,
		Sort:   defaultListingSort,
		Search: strings.TrimSpace(q.Get("search")),
	}

	for _, s := range listingSorts {
		if q.Get("sort") == s.Value {
			query.Sort = s.Value
		}
	}
	for _, t := range models.PropertyTypes {
		if q.Get("type") == string(t) {
			query.Type = string(t)
		}
	}
	if v := q.Get("minPrice"); v != "" {
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			query.MinPrice = v
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			query.MaxPrice = v
		}
	}
	if v := q.Get("bedrooms"); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			query.Bedrooms = v
		}
	}
	return query
}

func (app *App) handleProperties(w http.ResponseWriter, r *http.Request) {
	query := listingQuery(r)
	page := listingPage{
		Query: query,
		Types: models.PropertyTypes,
		Sorts: listingSorts,
	}

	properties, pagination, err := app.API.ListProperties(r.Context(), query)
	if err != nil {
		AppLogger.WithError(err).WithField("request_id", utils.GetRequestID(r)).Warn("Failed to list properties")
		page.LoadFailed = true
	} else {
		page.Properties = properties
		if pagination != nil {
			page.Pagination = *pagination
		}
	}

	app.renderPage(w, r, http.StatusOK, "properties", page)
}

// loadProperty fetches the property named in the route. Any failure sends
// the visitor back to the listing.
func (app *App) loadProperty(w http.ResponseWriter, r *http.Request) (*models.Property, bool) {
	id := mux.Vars(r)["id"]
	property, err := app.API.GetProperty(r.Context(), id)
	if err != nil {
		AppLogger.WithError(err).WithFields(map[string]interface{}{
			"request_id":  utils.GetRequestID(r),
			"property_id": id,
		}).Warn("Failed to load property")
		http.Redirect(w, r, "/properties", http.StatusFound)
		return nil, false
	}
	if property.ID == "" {
		property.ID = id
	}
	return property, true
}

func (app *App) handlePropertyDetail(w http.ResponseWriter, r *http.Request) {
	property, ok := app.loadProperty(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	dates, err := services.ParseDateRange(q.Get("checkIn"), q.Get("checkOut"))
	page := newPropertyPage(property, dates)
	if err != nil {
		page.DateError = err.Error()
	} else if err := app.Bookings.Policy().Validate(dates); err != nil {
		page.DateError = err.Error()
	}

	app.renderPage(w, r, http.StatusOK, "property", page)
}

func (app *App) handleBookProperty(w http.ResponseWriter, r *http.Request) {
	state := utils.SessionState(r)
	if !state.IsAuthenticated() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	property, ok := app.loadProperty(w, r)
	if !ok {
		return
	}

	form, errs := parseBookingForm(r)
	dates, dateErr := services.ParseDateRange(form.CheckIn, form.CheckOut)
	page := newPropertyPage(property, dates)
	page.Booking = form
	page.BookingErrors = errs

	if property.MaxGuests > 0 && form.Adults+form.Children > property.MaxGuests {
		errs.add("adults", fmt.Sprintf("This property accommodates up to %d guests", property.MaxGuests))
	}
	if dateErr != nil {
		page.DateError = dateErr.Error()
	}
	if len(errs) > 0 || dateErr != nil {
		app.renderPage(w, r, http.StatusUnprocessableEntity, "property", page)
		return
	}

	result, err := app.Bookings.Submit(r.Context(), state, services.BookingRequest{
		PropertyID:      property.ID,
		Range:           dates,
		Guests:          models.Guests{Adults: form.Adults, Children: form.Children},
		SpecialRequests: form.SpecialRequests,
	})

	var bookingErr *services.BookingError
	switch {
	case err == nil:
	case errors.Is(err, services.ErrLoginRequired):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case errors.As(err, &bookingErr):
		app.Metrics.BookingsTotal.WithLabelValues(string(bookingErr.Stage) + "_failed").Inc()
		AppLogger.WithError(err).WithFields(map[string]interface{}{
			"request_id":  utils.GetRequestID(r),
			"property_id": property.ID,
			"stage":       string(bookingErr.Stage),
			"booking_id":  bookingErr.BookingID,
		}).Warn("Booking failed")
		app.expireIfUnauthorized(r, err)
		page.Message = bookingErr.Message
		app.renderPage(w, r, http.StatusOK, "property", page)
		return
	default:
		page.DateError = err.Error()
		app.renderPage(w, r, http.StatusUnprocessableEntity, "property", page)
		return
	}

	app.Metrics.BookingsTotal.WithLabelValues("confirmed").Inc()
	AppLogger.WithFields(map[string]interface{}{
		"request_id":  utils.GetRequestID(r),
		"property_id": property.ID,
		"booking_id":  result.Booking.ID,
		"nights":      dates.Nights(),
	}).Info("Booking confirmed")

	page.Message = result.Message
	page.Confirmed = true

	seconds := int(result.RedirectAfter.Seconds())
	w.Header().Set("Refresh", fmt.Sprintf("%d; url=%s", seconds, result.RedirectTo))
	data := app.BuildTemplateData(w, r, page)
	data.RefreshURL = result.RedirectTo
	data.RefreshAfter = seconds
	app.renderWith(w, r, http.StatusOK, "property", data)
}

func (app *App) handlePropertyEnquiry(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	property, ok := app.loadProperty(w, r)
	if !ok {
		return
	}

	form, errs := parseEnquiryForm(r)
	form.Property = property.ID

	page := newPropertyPage(property, services.DateRange{})
	page.Enquiry = form
	page.EnquiryErrors = errs
	if len(errs) > 0 {
		app.renderPage(w, r, http.StatusUnprocessableEntity, "property", page)
		return
	}

	if _, err := app.API.SendEnquiry(r.Context(), form.Request()); err != nil {
		AppLogger.WithError(err).WithFields(map[string]interface{}{
			"request_id":  utils.GetRequestID(r),
			"property_id": property.ID,
		}).Warn("Failed to send enquiry")
		page.EnquiryError = api.MessageOf(err, enquiryFailed)
		app.renderPage(w, r, failureStatus(err), "property", page)
		return
	}

	app.redirectWithFlash(w, r, "/properties/"+url.PathEscape(property.ID), FlashSuccess, enquirySentMessage)
}

type quoteResponse struct {
	PropertyID      string  `json:"propertyId"`
	CheckIn         string  `json:"checkIn,omitempty"`
	CheckOut        string  `json:"checkOut,omitempty"`
	Nights          int     `json:"nights"`
	PerNight        float64 `json:"perNight"`
	NightlyTotal    float64 `json:"nightlyTotal"`
	CleaningFee     float64 `json:"cleaningFee"`
	ServiceFee      float64 `json:"serviceFee"`
	Total           float64 `json:"total"`
	ShowCleaningFee bool    `json:"showCleaningFee"`
	ShowServiceFee  bool    `json:"showServiceFee"`
	Bookable        bool    `json:"bookable"`
}

// handleQuote prices a date range for the booking card without a page reload
func (app *App) handleQuote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	property, err := app.API.GetProperty(r.Context(), id)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			iutils.NotFoundError(w, "Property")
			return
		}
		iutils.RespondWithError(w, http.StatusBadGateway, "Could not load property")
		return
	}

	q := r.URL.Query()
	dates, err := services.ParseDateRange(q.Get("checkIn"), q.Get("checkOut"))
	if err != nil {
		iutils.BadRequestError(w, err.Error())
		return
	}
	if err := app.Bookings.Policy().Validate(dates); err != nil {
		iutils.BadRequestError(w, err.Error())
		return
	}

	quote := services.Quote(property, dates)
	iutils.RespondWithSuccess(w, quoteResponse{
		PropertyID:      id,
		CheckIn:         dates.CheckInValue(),
		CheckOut:        dates.CheckOutValue(),
		Nights:          quote.Nights,
		PerNight:        quote.PerNight,
		NightlyTotal:    quote.NightlyTotal,
		CleaningFee:     quote.CleaningFee,
		ServiceFee:      quote.ServiceFee,
		Total:           quote.Total,
		ShowCleaningFee: quote.ShowCleaningFee(),
		ShowServiceFee:  quote.ShowServiceFee(),
		Bookable:        services.IsBookable(dates.CheckIn, dates.CheckOut),
	}, "")
}
