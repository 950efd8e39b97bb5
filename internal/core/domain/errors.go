package domain

import (
	"errors"
	"fmt"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrStatusConflict      = errors.New("reservation status was changed by another transaction")
)

type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type QuantityLimitExceeded struct {
	AmenityID string
	Limit     int
}

func (e *QuantityLimitExceeded) Error() string {
	return fmt.Sprintf("quantity for %s cannot exceed %d", e.AmenityID, e.Limit)
}

type DuplicateItemError struct {
	AmenityID string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("amenity %s is already in the cart", e.AmenityID)
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

type InvalidTransitionError struct {
	From   BookingStatus
	To     BookingStatus
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("action %s is not allowed while reservation is %s", e.Action, e.From)
	}
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown booking status %q", e.Status)
}

// NegativeResultError reports arithmetic that would underflow. In pricing it
// means the stored figures contradict each other.
type NegativeResultError struct {
	Operation  string
	Minuend    Money
	Subtrahend Money
}

func (e *NegativeResultError) Error() string {
	return fmt.Sprintf("%s would go negative: %d - %d %s",
		e.Operation, e.Minuend.Amount(), e.Subtrahend.Amount(), e.Minuend.Currency())
}
