package main

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"vacationRentalWebsite/internal/api"
	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/utils"
)

type adminPropertiesPage struct {
	Properties []models.Property
	Total      int
	LoadFailed bool
}

type propertyFormPage struct {
	// ID is empty when creating
	ID       string
	Form     PropertyForm
	Errors   FormErrors
	Error    string
	Types    []models.PropertyType
	Statuses []models.PropertyStatus
}

func (p propertyFormPage) Action() string {
	if p.ID == "" {
		return "/admin/properties"
	}
	return "/admin/properties/" + p.ID
}

func newPropertyFormPage(id string, form PropertyForm, errs FormErrors) propertyFormPage {
	if errs == nil {
		errs = FormErrors{}
	}
	return propertyFormPage{
		ID:       id,
		Form:     form,
		Errors:   errs,
		Types:    models.PropertyTypes,
		Statuses: models.PropertyStatuses,
	}
}

func (app *App) handleAdminProperties(w http.ResponseWriter, r *http.Request) {
	var page adminPropertiesPage

	properties, pagination, err := app.API.ListProperties(r.Context(), models.ListQuery{Limit: adminListLimit, Sort: defaultListingSort})
	if err != nil {
		AppLogger.WithError(err).WithField("request_id", utils.GetRequestID(r)).Warn("Failed to list properties for admin")
		page.LoadFailed = true
	} else {
		page.Properties = properties
		page.Total = len(properties)
		if pagination != nil {
			page.Total = pagination.Total
		}
	}

	app.renderPage(w, r, http.StatusOK, "admin_properties", page)
}

func (app *App) handleAdminNewProperty(w http.ResponseWriter, r *http.Request) {
	form := PropertyForm{Status: string(models.PropertyActive), MaxGuests: 1}
	app.renderPage(w, r, http.StatusOK, "admin_property_form", newPropertyFormPage("", form, nil))
}

func (app *App) handleAdminCreateProperty(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form, errs := parsePropertyForm(r)
	if len(errs) > 0 {
		app.renderPage(w, r, http.StatusUnprocessableEntity, "admin_property_form", newPropertyFormPage("", form, errs))
		return
	}

	state := utils.SessionState(r)
	created, err := app.API.CreateProperty(r.Context(), state.Token, form.Payload())
	if err != nil {
		app.expireIfUnauthorized(r, err)
		page := newPropertyFormPage("", form, fieldErrors(err))
		page.Error = api.MessageOf(err, "Could not create property. Please try again.")
		app.renderPage(w, r, failureStatus(err), "admin_property_form", page)
		return
	}

	app.Catalog.Invalidate()
	AppLogger.WithFields(map[string]interface{}{
		"request_id":  utils.GetRequestID(r),
		"property_id": created.ID,
	}).Info("Property created")
	app.redirectWithFlash(w, r, "/admin/properties", FlashSuccess, "Property \""+created.Title+"\" created.")
}

func (app *App) handleAdminEditProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	property, err := app.API.GetProperty(r.Context(), id)
	if err != nil {
		app.adminWriteFailed(w, r, err, "/admin/properties", "load property")
		return
	}

	app.renderPage(w, r, http.StatusOK, "admin_property_form", newPropertyFormPage(id, propertyFormFrom(property), nil))
}

func (app *App) handleAdminUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form, errs := parsePropertyForm(r)
	if len(errs) > 0 {
		app.renderPage(w, r, http.StatusUnprocessableEntity, "admin_property_form", newPropertyFormPage(id, form, errs))
		return
	}

	state := utils.SessionState(r)
	if _, err := app.API.UpdateProperty(r.Context(), state.Token, id, form.Payload()); err != nil {
		app.expireIfUnauthorized(r, err)
		page := newPropertyFormPage(id, form, fieldErrors(err))
		page.Error = api.MessageOf(err, "Could not update property. Please try again.")
		app.renderPage(w, r, failureStatus(err), "admin_property_form", page)
		return
	}

	app.Catalog.Invalidate()
	app.redirectWithFlash(w, r, "/admin/properties", FlashSuccess, "Property updated.")
}

func (app *App) handleAdminDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	state := utils.SessionState(r)

	if err := app.API.DeleteProperty(r.Context(), state.Token, id); err != nil {
		app.adminWriteFailed(w, r, err, "/admin/properties", "delete property")
		return
	}

	app.Catalog.Invalidate()
	AppLogger.WithFields(map[string]interface{}{
		"request_id":  utils.GetRequestID(r),
		"property_id": id,
	}).Info("Property deleted")
	app.redirectWithFlash(w, r, "/admin/properties", FlashSuccess, "Property deleted.")
}

// fieldErrors maps per-field validation errors sent by the API onto the form
func fieldErrors(err error) FormErrors {
	errs := FormErrors{}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return errs
	}
	for _, fe := range apiErr.Fields {
		errs.add(apiFieldName(fe.Field), fe.Message)
	}
	return errs
}

// apiFieldName maps the API's nested payload paths to flat form field names
func apiFieldName(field string) string {
	switch field {
	case "price.perNight":
		return "pricePerNight"
	case "price.cleaningFee":
		return "cleaningFee"
	case "price.serviceFee":
		return "serviceFee"
	case "location.address":
		return "address"
	case "location.city":
		return "city"
	case "location.state":
		return "state"
	case "location.country":
		return "country"
	case "location.zipCode":
		return "zipCode"
	case "capacity.bedrooms":
		return "bedrooms"
	case "capacity.bathrooms":
		return "bathrooms"
	case "capacity.maxGuests":
		return "maxGuests"
	}
	return field
}
