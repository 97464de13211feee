package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vacationRentalWebsite/internal/models"
)

// Messages shown after a booking attempt
const (
	BookingConfirmedMessage = "🎉 Booking confirmed! Redirecting to your bookings..."
	BookingFailedMessage    = "Booking failed. Please try again."
)

// BookingRedirectDelay is how long the confirmation stays up before the
// browser moves to the bookings page.
const BookingRedirectDelay = 2 * time.Second

// BookingAPI is the slice of the booking API used to reserve and pay
type BookingAPI interface {
	CreateBooking(ctx context.Context, token string, req models.CreateBookingRequest) (*models.Booking, error)
	PayBooking(ctx context.Context, token, id string) (*models.Booking, error)
}

// BookingStage names the remote call a booking failed in
type BookingStage string

const (
	StageCreate BookingStage = "create"
	StagePay    BookingStage = "pay"
)

// BookingError is a failed two-phase booking. When Stage is StagePay the
// booking exists on the server but is unpaid.
type BookingError struct {
	Stage     BookingStage
	BookingID string
	Message   string
	Err       error
}

func (e *BookingError) Error() string {
	if e.BookingID != "" {
		return fmt.Sprintf("booking %s failed at %s: %v", e.BookingID, e.Stage, e.Err)
	}
	return fmt.Sprintf("booking failed at %s: %v", e.Stage, e.Err)
}

func (e *BookingError) Unwrap() error { return e.Err }

// BookingRequest is what the property page submits
type BookingRequest struct {
	PropertyID      string
	Range           DateRange
	Guests          models.Guests
	SpecialRequests string
}

// BookingResult is a fully paid booking plus what the page shows next
type BookingResult struct {
	Booking       *models.Booking
	Message       string
	RedirectTo    string
	RedirectAfter time.Duration
}

// BookingService runs the create-then-pay sequence
type BookingService struct {
	api      BookingAPI
	policy   DatePolicy
	onUnpaid func(bookingID string, err error)
}

func NewBookingService(api BookingAPI, policy DatePolicy) *BookingService {
	return &BookingService{api: api, policy: policy}
}

// OnUnpaid sets a hook that runs when a booking was created but its payment
// call failed. Nothing cancels such a booking automatically.
func (s *BookingService) OnUnpaid(fn func(bookingID string, err error)) {
	s.onUnpaid = fn
}

// Policy returns the date policy in force
func (s *BookingService) Policy() DatePolicy {
	return s.policy
}

// Submit creates the booking and, only once that succeeds, pays for it.
// Success is reported only after both calls return.
func (s *BookingService) Submit(ctx context.Context, session State, req BookingRequest) (*BookingResult, error) {
	if !session.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	if err := s.policy.Validate(req.Range); err != nil {
		return nil, err
	}
	if !IsBookable(req.Range.CheckIn, req.Range.CheckOut) {
		return nil, ErrNotBookable
	}

	created, err := s.api.CreateBooking(ctx, session.Token, models.CreateBookingRequest{
		Property:        req.PropertyID,
		CheckIn:         isoTimestamp(*req.Range.CheckIn),
		CheckOut:        isoTimestamp(*req.Range.CheckOut),
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return nil, &BookingError{Stage: StageCreate, Message: messageOf(err), Err: err}
	}
	if created == nil || created.ID == "" {
		err := errors.New("create booking returned no id")
		return nil, &BookingError{Stage: StageCreate, Message: BookingFailedMessage, Err: err}
	}

	paid, err := s.api.PayBooking(ctx, session.Token, created.ID)
	if err != nil {
		if s.onUnpaid != nil {
			s.onUnpaid(created.ID, err)
		}
		return nil, &BookingError{Stage: StagePay, BookingID: created.ID, Message: messageOf(err), Err: err}
	}
	if paid == nil {
		paid = created
	}

	return &BookingResult{
		Booking:       paid,
		Message:       BookingConfirmedMessage,
		RedirectTo:    "/bookings",
		RedirectAfter: BookingRedirectDelay,
	}, nil
}

// isoTimestamp formats t the way the API expects dates (UTC, millisecond precision)
func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// serverMessager is satisfied by API errors that carry a user-facing message
type serverMessager interface {
	error
	ServerMessage() string
}

func messageOf(err error) string {
	var sm serverMessager
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	return BookingFailedMessage
}
