package services

import (
	"strings"
	"time"

	"vacationRentalWebsite/internal/models"
)

const (
	msPerDay   = int64(24 * time.Hour / time.Millisecond)
	DateLayout = "2006-01-02"
)

// DateRange is a selected stay. Either end may be unset.
type DateRange struct {
	CheckIn  *time.Time
	CheckOut *time.Time
}

// ParseDateRange reads two YYYY-MM-DD values. Blank values stay unset.
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	var r DateRange
	var err error
	if r.CheckIn, err = parseDay(checkIn); err != nil {
		return DateRange{}, err
	}
	if r.CheckOut, err = parseDay(checkOut); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func parseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}

// formatDay renders one end of the range for a date input, or "" when unset
func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

func (r DateRange) CheckInValue() string  { return formatDay(r.CheckIn) }
func (r DateRange) CheckOutValue() string { return formatDay(r.CheckOut) }

// Nights is ComputeNights over the range
func (r DateRange) Nights() int {
	return ComputeNights(r.CheckIn, r.CheckOut)
}

// ComputeNights counts nights between two dates as the ceiling of the absolute
// difference in whole days. It returns 0 when either date is unset.
func ComputeNights(checkIn, checkOut *time.Time) int {
	if checkIn == nil || checkOut == nil {
		return 0
	}
	ms := checkOut.Sub(*checkIn).Milliseconds()
	if ms < 0 {
		ms = -ms
	}
	return int((ms + msPerDay - 1) / msPerDay)
}

// IsBookable is true when both dates are set and at least one night apart
func IsBookable(checkIn, checkOut *time.Time) bool {
	return checkIn != nil && checkOut != nil && ComputeNights(checkIn, checkOut) >= 1
}

// Breakdown is the priced summary of a stay
type Breakdown struct {
	Nights       int
	PerNight     float64
	NightlyTotal float64
	CleaningFee  float64
	ServiceFee   float64
	Total        float64
}

// ShowCleaningFee reports whether the cleaning fee line is displayed. Zero
// fees are hidden but still part of Total.
func (b Breakdown) ShowCleaningFee() bool { return b.CleaningFee > 0 }

func (b Breakdown) ShowServiceFee() bool { return b.ServiceFee > 0 }

// ComputeBreakdown prices a stay. It is a pure function of its inputs.
func ComputeBreakdown(perNight, cleaningFee, serviceFee float64, nights int) Breakdown {
	nightly := perNight * float64(nights)
	return Breakdown{
		Nights:       nights,
		PerNight:     perNight,
		NightlyTotal: nightly,
		CleaningFee:  cleaningFee,
		ServiceFee:   serviceFee,
		Total:        nightly + cleaningFee + serviceFee,
	}
}

// Quote prices r against the property's schedule
func Quote(p *models.Property, r DateRange) Breakdown {
	var price models.PriceSchedule
	if p != nil {
		price = p.Price
	}
	return ComputeBreakdown(price.PerNight, price.CleaningFee, price.ServiceFee, r.Nights())
}

// DatePolicy decides whether a check-out before check-in is accepted. The
// night count always uses the absolute difference; this only gates submission.
type DatePolicy struct {
	AllowReversed bool
}

// Validate returns ErrReversedDates when the policy rejects r
func (p DatePolicy) Validate(r DateRange) error {
	if p.AllowReversed || r.CheckIn == nil || r.CheckOut == nil {
		return nil
	}
	if r.CheckOut.Before(*r.CheckIn) {
		return ErrReversedDates
	}
	return nil
}
