package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// PropertyType enumerates the kinds of rentals the platform lists
type PropertyType string

const (
	PropertyVilla      PropertyType = "villa"
	PropertyApartment  PropertyType = "apartment"
	PropertyCottage    PropertyType = "cottage"
	PropertyCabin      PropertyType = "cabin"
	PropertyPenthouse  PropertyType = "penthouse"
	PropertyBeachHouse PropertyType = "beach-house"
)

// PropertyTypes lists every PropertyType in display order
var PropertyTypes = []PropertyType{
	PropertyVilla, PropertyApartment, PropertyCottage,
	PropertyCabin, PropertyPenthouse, PropertyBeachHouse,
}

// PropertyStatus is the publication state of a listing
type PropertyStatus string

const (
	PropertyActive      PropertyStatus = "active"
	PropertyInactive    PropertyStatus = "inactive"
	PropertyMaintenance PropertyStatus = "maintenance"
)

// PropertyStatuses lists every PropertyStatus in display order
var PropertyStatuses = []PropertyStatus{PropertyActive, PropertyInactive, PropertyMaintenance}

// PriceSchedule is the per-night rate and flat fees of a property
type PriceSchedule struct {
	PerNight    float64 `json:"perNight"`
	CleaningFee float64 `json:"cleaningFee"`
	ServiceFee  float64 `json:"serviceFee"`
}

// Coordinates is an optional map position
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is the postal address of a property
type Location struct {
	Address     string       `json:"address"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Country     string       `json:"country"`
	ZipCode     string       `json:"zipCode"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// PropertyImage is a single gallery image
type PropertyImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Property is a rental listing as served by the booking API
type Property struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Type        PropertyType    `json:"type"`
	Price       PriceSchedule   `json:"price"`
	Location    Location        `json:"location"`
	Amenities   []string        `json:"amenities"`
	Images      []PropertyImage `json:"images"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	MaxGuests   int             `json:"maxGuests"`
	Featured    bool            `json:"featured"`
	Status      PropertyStatus  `json:"status"`
	Rating      float64         `json:"rating"`
	ReviewCount int             `json:"reviewCount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CoverImage returns the first gallery image or nil
func (p *Property) CoverImage() *PropertyImage {
	if p == nil || len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}

// Capacity groups the room counts of a property payload
type Capacity struct {
	Bedrooms  int `json:"bedrooms"`
	Bathrooms int `json:"bathrooms"`
	MaxGuests int `json:"maxGuests"`
}

// PropertyPayload is the create/update body the API expects for a property
type PropertyPayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        PropertyType   `json:"type"`
	Price       PriceSchedule  `json:"price"`
	Location    Location       `json:"location"`
	Capacity    Capacity       `json:"capacity"`
	Amenities   []string       `json:"amenities"`
	Featured    bool           `json:"featured"`
	Status      PropertyStatus `json:"status"`
}

// PropertyRef is a property reference that the API sends either as a bare id
// or as a populated object. It may also be null.
type PropertyRef struct {
	ID       string
	Property *Property
}

// UnmarshalJSON decodes an id string, a populated property or null
func (r *PropertyRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = PropertyRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	var p Property
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.ID = p.ID
	r.Property = &p
	return nil
}

// MarshalJSON writes the bare id
func (r PropertyRef) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// Title returns the populated title or an empty string
func (r PropertyRef) Title() string {
	if r.Property == nil {
		return ""
	}
	return r.Property.Title
}
