package export

import (
	"vacationRentalWebsite/internal/models"
)

// BookingHeaders are the column titles of every bookings export
var BookingHeaders = []string{
	"ID", "Property", "Guest", "Email", "Check-in", "Check-out", "Nights",
	"Adults", "Children", "Nightly Rate", "Cleaning Fee", "Service Fee",
	"Total", "Status", "Payment", "Created At",
}

// bookingRow flattens b into cells in BookingHeaders order
func bookingRow(b models.Booking) []interface{} {
	property := b.Property.Title()
	if property == "" {
		property = b.Property.ID
	}
	var guest, email string
	if b.User.User != nil {
		guest = b.User.User.Name
		email = b.User.User.Email
	} else {
		guest = b.User.ID
	}
	return []interface{}{
		b.ID,
		property,
		guest,
		email,
		b.CheckIn.Format("2006-01-02"),
		b.CheckOut.Format("2006-01-02"),
		b.Nights,
		b.Guests.Adults,
		b.Guests.Children,
		b.NightlyRate,
		b.CleaningFee,
		b.ServiceFee,
		b.TotalPrice,
		string(b.Status),
		string(b.PaymentStatus),
		b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
