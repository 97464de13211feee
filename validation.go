package main

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"vacationRentalWebsite/internal/models"
)

// FormErrors maps a form field name to the message shown next to it
type FormErrors map[string]string

// Has reports whether field has an error
func (e FormErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e FormErrors) add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

// messages maps "field.tag" to the user-facing text for a failed rule
type messages map[string]string

type form interface {
	messages() messages
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateForm runs the struct rules of f and merges them into errs
func validateForm(f form, errs FormErrors) FormErrors {
	if errs == nil {
		errs = FormErrors{}
	}

	err := validate.Struct(f)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs
	}

	msgs := f.messages()
	for _, fe := range verrs {
		key := fe.Field() + "." + fe.Tag()
		if msg, ok := msgs[key]; ok {
			errs.add(fe.Field(), msg)
			continue
		}
		errs.add(fe.Field(), fieldLabel(fe.Field())+" is invalid")
	}
	return errs
}

func fieldLabel(field string) string {
	if field == "" {
		return "Value"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

// sanitize trims whitespace and drops control characters other than newlines and tabs
func sanitize(input string) string {
	input = strings.TrimSpace(input)

	var result strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\r' || r == '\t' {
			result.WriteRune(r)
		}
	}

	sanitized := result.String()
	if len(sanitized) > 10000 {
		sanitized = sanitized[:10000]
	}
	return sanitized
}

func formValue(r *http.Request, key string) string {
	return sanitize(r.PostFormValue(key))
}

// formNumber parses a numeric field. Missing or malformed input is recorded
// as the field's required message.
func formNumber(r *http.Request, key, requiredMsg string, errs FormErrors) float64 {
	raw := formValue(r, key)
	if raw == "" {
		if requiredMsg != "" {
			errs.add(key, requiredMsg)
		}
		return 0
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs.add(key, fieldLabel(key)+" must be a number")
		return 0
	}
	return n
}

func formInt(r *http.Request, key, requiredMsg string, errs FormErrors) int {
	raw := formValue(r, key)
	if raw == "" {
		if requiredMsg != "" {
			errs.add(key, requiredMsg)
		}
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.add(key, fieldLabel(key)+" must be a whole number")
		return 0
	}
	return n
}

// LoginForm is the sign-in form
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (LoginForm) messages() messages {
	return messages{
		"email.required":    "Email is required",
		"email.email":       "Please provide a valid email",
		"password.required": "Password is required",
	}
}

func parseLoginForm(r *http.Request) (LoginForm, FormErrors) {
	f := LoginForm{
		Email:    formValue(r, "email"),
		Password: r.PostFormValue("password"),
	}
	return f, validateForm(f, nil)
}

// RegisterForm is the account creation form
type RegisterForm struct {
	Name            string `form:"name" validate:"required,min=2,max=50"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
	Phone           string `form:"phone" validate:"omitempty,max=30"`
}

func (RegisterForm) messages() messages {
	return messages{
		"name.required":            "Name is required",
		"name.min":                 "Name must be at least 2 characters",
		"name.max":                 "Name cannot exceed 50 characters",
		"email.required":           "Email is required",
		"email.email":              "Please provide a valid email",
		"password.required":        "Password is required",
		"password.min":             "Password must be at least 6 characters",
		"confirmPassword.required": "Please confirm your password",
		"confirmPassword.eqfield":  "Passwords do not match",
	}
}

func parseRegisterForm(r *http.Request) (RegisterForm, FormErrors) {
	f := RegisterForm{
		Name:            formValue(r, "name"),
		Email:           formValue(r, "email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
		Phone:           formValue(r, "phone"),
	}
	return f, validateForm(f, nil)
}

// ProfileForm edits the signed-in user's own record
type ProfileForm struct {
	Name  string `form:"name" validate:"required,min=2,max=50"`
	Phone string `form:"phone" validate:"omitempty,max=30"`
}

func (ProfileForm) messages() messages {
	return messages{
		"name.required": "Name is required",
		"name.min":      "Name must be at least 2 characters",
		"name.max":      "Name cannot exceed 50 characters",
	}
}

func parseProfileForm(r *http.Request) (ProfileForm, FormErrors) {
	f := ProfileForm{Name: formValue(r, "name"), Phone: formValue(r, "phone")}
	return f, validateForm(f, nil)
}

// BookingForm is the reservation card on the property page
type BookingForm struct {
	CheckIn         string `form:"checkIn" validate:"required"`
	CheckOut        string `form:"checkOut" validate:"required"`
	Adults          int    `form:"adults" validate:"min=1"`
	Children        int    `form:"children" validate:"min=0"`
	SpecialRequests string `form:"specialRequests" validate:"max=500"`
}

func (BookingForm) messages() messages {
	return messages{
		"checkIn.required":    "Check-in date is required",
		"checkOut.required":   "Check-out date is required",
		"adults.min":          "At least one adult is required",
		"children.min":        "Children cannot be negative",
		"specialRequests.max": "Special requests cannot exceed 500 characters",
	}
}

func parseBookingForm(r *http.Request) (BookingForm, FormErrors) {
	errs := FormErrors{}
	f := BookingForm{
		CheckIn:         formValue(r, "checkIn"),
		CheckOut:        formValue(r, "checkOut"),
		Adults:          formInt(r, "adults", "Number of adults is required", errs),
		Children:        formInt(r, "children", "", errs),
		SpecialRequests: formValue(r, "specialRequests"),
	}
	return f, validateForm(f, errs)
}

// EnquiryForm is the public question form
type EnquiryForm struct {
	Name     string `form:"name" validate:"required,min=2"`
	Email    string `form:"email" validate:"required,email"`
	Phone    string `form:"phone" validate:"omitempty,max=30"`
	Subject  string `form:"subject" validate:"max=100"`
	Message  string `form:"message" validate:"required,min=5,max=1000"`
	Property string `form:"property"`
}

func (EnquiryForm) messages() messages {
	return messages{
		"name.required":    "Name is required",
		"name.min":         "Name must be at least 2 characters",
		"email.required":   "Email is required",
		"email.email":      "Please provide a valid email",
		"subject.max":      "Subject cannot exceed 100 characters",
		"message.required": "Message is required",
		"message.min":      "Message must be at least 5 characters",
		"message.max":      "Message cannot exceed 1000 characters",
	}
}

const defaultEnquirySubject = "General Enquiry"

func parseEnquiryForm(r *http.Request) (EnquiryForm, FormErrors) {
	f := EnquiryForm{
		Name:     formValue(r, "name"),
		Email:    formValue(r, "email"),
		Phone:    formValue(r, "phone"),
		Subject:  formValue(r, "subject"),
		Message:  formValue(r, "message"),
		Property: formValue(r, "property"),
	}
	if f.Subject == "" {
		f.Subject = defaultEnquirySubject
	}
	return f, validateForm(f, nil)
}

// Request converts the form to the API body
func (f EnquiryForm) Request() models.EnquiryRequest {
	return models.EnquiryRequest{
		Name:     f.Name,
		Email:    f.Email,
		Phone:    f.Phone,
		Property: f.Property,
		Subject:  f.Subject,
		Message:  f.Message,
	}
}

// PropertyForm is the admin create/edit form
type PropertyForm struct {
	Title         string   `form:"title" validate:"required,min=3,max=120"`
	Description   string   `form:"description" validate:"required,min=10,max=2000"`
	Type          string   `form:"type" validate:"required,oneof=villa apartment cottage cabin penthouse beach-house"`
	PricePerNight float64  `form:"pricePerNight" validate:"min=0"`
	CleaningFee   float64  `form:"cleaningFee" validate:"min=0"`
	ServiceFee    float64  `form:"serviceFee" validate:"min=0"`
	Address       string   `form:"address" validate:"required"`
	City          string   `form:"city" validate:"required"`
	State         string   `form:"state"`
	Country       string   `form:"country" validate:"required"`
	ZipCode       string   `form:"zipCode"`
	Amenities     []string `form:"amenities"`
	Bedrooms      int      `form:"bedrooms" validate:"min=0"`
	Bathrooms     int      `form:"bathrooms" validate:"min=0"`
	MaxGuests     int      `form:"maxGuests" validate:"min=1"`
	Featured      bool     `form:"featured"`
	Status        string   `form:"status" validate:"required,oneof=active inactive maintenance"`
}

func (PropertyForm) messages() messages {
	return messages{
		"title.required":       "Title is required",
		"title.min":            "Title must be at least 3 characters",
		"title.max":            "Title cannot exceed 120 characters",
		"description.required": "Description is required",
		"description.min":      "Description must be at least 10 characters",
		"description.max":      "Description cannot exceed 2000 characters",
		"type.required":        "Property type is required",
		"type.oneof":           "Property type is required",
		"pricePerNight.min":    "Price cannot be negative",
		"cleaningFee.min":      "Cleaning fee cannot be negative",
		"serviceFee.min":       "Service fee cannot be negative",
		"address.required":     "Address is required",
		"city.required":        "City is required",
		"country.required":     "Country is required",
		"bedrooms.min":         "Bedrooms cannot be negative",
		"bathrooms.min":        "Bathrooms cannot be negative",
		"maxGuests.min":        "Max guests must be at least 1",
		"status.oneof":         "Status must be active, inactive or maintenance",
	}
}

func parsePropertyForm(r *http.Request) (PropertyForm, FormErrors) {
	errs := FormErrors{}
	f := PropertyForm{
		Title:         formValue(r, "title"),
		Description:   formValue(r, "description"),
		Type:          formValue(r, "type"),
		PricePerNight: formNumber(r, "pricePerNight", "Price per night is required", errs),
		CleaningFee:   formNumber(r, "cleaningFee", "", errs),
		ServiceFee:    formNumber(r, "serviceFee", "", errs),
		Address:       formValue(r, "address"),
		City:          formValue(r, "city"),
		State:         formValue(r, "state"),
		Country:       formValue(r, "country"),
		ZipCode:       formValue(r, "zipCode"),
		Amenities:     splitAmenities(formValue(r, "amenities")),
		Bedrooms:      formInt(r, "bedrooms", "Bedrooms is required", errs),
		Bathrooms:     formInt(r, "bathrooms", "Bathrooms is required", errs),
		MaxGuests:     formInt(r, "maxGuests", "Max guests is required", errs),
		Featured:      r.PostFormValue("featured") != "",
		Status:        formValue(r, "status"),
	}
	if f.Status == "" {
		f.Status = string(models.PropertyActive)
	}
	return f, validateForm(f, errs)
}

// splitAmenities accepts a comma or newline separated list
func splitAmenities(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if a := strings.ToLower(strings.TrimSpace(f)); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Payload converts the form to the nested body the API expects
func (f PropertyForm) Payload() models.PropertyPayload {
	return models.PropertyPayload{
		Title:       f.Title,
		Description: f.Description,
		Type:        models.PropertyType(f.Type),
		Price: models.PriceSchedule{
			PerNight:    f.PricePerNight,
			CleaningFee: f.CleaningFee,
			ServiceFee:  f.ServiceFee,
		},
		Location: models.Location{
			Address: f.Address,
			City:    f.City,
			State:   f.State,
			Country: f.Country,
			ZipCode: f.ZipCode,
		},
		Capacity: models.Capacity{
			Bedrooms:  f.Bedrooms,
			Bathrooms: f.Bathrooms,
			MaxGuests: f.MaxGuests,
		},
		Amenities: f.Amenities,
		Featured:  f.Featured,
		Status:    models.PropertyStatus(f.Status),
	}
}

// propertyFormFrom prefills the edit form from an existing listing
func propertyFormFrom(p *models.Property) PropertyForm {
	return PropertyForm{
		Title:         p.Title,
		Description:   p.Description,
		Type:          string(p.Type),
		PricePerNight: p.Price.PerNight,
		CleaningFee:   p.Price.CleaningFee,
		ServiceFee:    p.Price.ServiceFee,
		Address:       p.Location.Address,
		City:          p.Location.City,
		State:         p.Location.State,
		Country:       p.Location.Country,
		ZipCode:       p.Location.ZipCode,
		Amenities:     p.Amenities,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		MaxGuests:     p.MaxGuests,
		Featured:      p.Featured,
		Status:        string(p.Status),
	}
}
