package models

import "time"

// EnquiryStatus tracks how far an enquiry has been handled
type EnquiryStatus string

const (
	EnquiryNew       EnquiryStatus = "new"
	EnquiryRead      EnquiryStatus = "read"
	EnquiryResponded EnquiryStatus = "responded"
	EnquiryClosed    EnquiryStatus = "closed"
)

// EnquiryStatuses lists every EnquiryStatus in display order
var EnquiryStatuses = []EnquiryStatus{EnquiryNew, EnquiryRead, EnquiryResponded, EnquiryClosed}

// Valid reports whether s is a known enquiry status
func (s EnquiryStatus) Valid() bool {
	for _, v := range EnquiryStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Enquiry is a question sent by a visitor, optionally about a property
type Enquiry struct {
	ID        string        `json:"_id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Property  PropertyRef   `json:"property"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    EnquiryStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// EnquiryRequest is the public enquiry form body
type EnquiryRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Property string `json:"property,omitempty"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}
