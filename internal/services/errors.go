package services

// Error definitions
var (
	ErrNotAuthenticated = NewError("no authenticated session")
	ErrCorruptSession   = NewError("persisted session is corrupt")
	ErrIncompleteAuth   = NewError("auth response is missing token or user")
	ErrLoginRequired    = NewError("login required to book")
	ErrNotBookable      = NewError("select check-in and check-out dates at least one night apart")
	ErrReversedDates    = NewError("check-out must be after check-in")
	ErrInvalidDate      = NewError("dates must be formatted as YYYY-MM-DD")
)

// Error represents a service error
type Error struct {
	message string
}

func NewError(message string) *Error {
	return &Error{message: message}
}

func (e *Error) Error() string {
	return e.message
}
