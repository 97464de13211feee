package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// BookingStatus is the lifecycle state of a reservation
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// BookingStatuses lists every BookingStatus in display order
var BookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted}

// Valid reports whether s is a known booking status
func (s BookingStatus) Valid() bool {
	for _, v := range BookingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PaymentStatus is the payment state of a reservation
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

// Guests is the party size of a booking
type Guests struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// Total returns adults plus children
func (g Guests) Total() int {
	return g.Adults + g.Children
}

// UserRef is a user reference sent either as a bare id or a populated object
type UserRef struct {
	ID   string
	User *User
}

// UnmarshalJSON decodes an id string, a populated user or null
func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = UserRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return err
	}
	r.ID = u.ID
	r.User = &u
	return nil
}

// MarshalJSON writes the bare id
func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// Booking is a reservation owned by the booking API
type Booking struct {
	ID              string        `json:"_id"`
	Property        PropertyRef   `json:"property"`
	User            UserRef       `json:"user"`
	CheckIn         time.Time     `json:"checkIn"`
	CheckOut        time.Time     `json:"checkOut"`
	Guests          Guests        `json:"guests"`
	TotalPrice      float64       `json:"totalPrice"`
	NightlyRate     float64       `json:"nightlyRate"`
	Nights          int           `json:"nights"`
	CleaningFee     float64       `json:"cleaningFee"`
	ServiceFee      float64       `json:"serviceFee"`
	Status          BookingStatus `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentID       string        `json:"paymentId,omitempty"`
	SpecialRequests string        `json:"specialRequests,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// CreateBookingRequest is the body of the create-booking call. Dates are
// already formatted as ISO-8601 strings.
type CreateBookingRequest struct {
	Property        string `json:"property"`
	CheckIn         string `json:"checkIn"`
	CheckOut        string `json:"checkOut"`
	Guests          Guests `json:"guests"`
	SpecialRequests string `json:"specialRequests"`
}
