package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified failure returned by the booking and wallet core.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrInvalidPassengerData = &Error{Kind: KindValidation, Code: "invalid_passenger_data", Message: "invalid passenger details"}
	ErrInvalidFare          = &Error{Kind: KindValidation, Code: "invalid_fare", Message: "invalid flight price"}
	ErrInvalidAmount        = &Error{Kind: KindValidation, Code: "invalid_amount", Message: "invalid amount"}
	ErrInvalidFlightID      = &Error{Kind: KindValidation, Code: "invalid_flight_id", Message: "invalid flight id"}

	ErrFlightNotFound  = &Error{Kind: KindNotFound, Code: "flight_not_found", Message: "flight not found"}
	ErrUserNotFound    = &Error{Kind: KindNotFound, Code: "user_not_found", Message: "user not found"}
	ErrBookingNotFound = &Error{Kind: KindNotFound, Code: "booking_not_found", Message: "booking not found"}

	ErrUnauthorized = &Error{Kind: KindAuthorization, Code: "unauthorized", Message: "booking belongs to another user"}

	ErrInsufficientSeats    = &Error{Kind: KindConflict, Code: "insufficient_seats", Message: "not enough seats available"}
	ErrInsufficientFunds    = &Error{Kind: KindConflict, Code: "insufficient_funds", Message: "insufficient wallet balance"}
	ErrAlreadyCancelled     = &Error{Kind: KindConflict, Code: "already_cancelled", Message: "booking already cancelled"}
	ErrPNRCollision         = &Error{Kind: KindConflict, Code: "pnr_collision", Message: "could not allocate a unique PNR"}
	ErrSeatCapacityExceeded = &Error{Kind: KindConflict, Code: "seat_capacity_exceeded", Message: "seat restore exceeds flight capacity"}
)

// InsufficientFundsError reports the wallet balance seen when a charge was refused.
type InsufficientFundsError struct {
	Balance  int64
	Required int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: balance %d, required %d", ErrInsufficientFunds.Message, e.Balance, e.Required)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// Internal wraps an infrastructure failure.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	var fe *InsufficientFundsError
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: KindInternal, Code: "internal", Message: "internal error", Err: err}
}

// KindOf classifies err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable code of err.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal"
}

// PublicMessage is the text safe to show to callers.
func PublicMessage(err error) string {
	if KindOf(err) == KindInternal {
		return "internal error"
	}
	return err.Error()
}
