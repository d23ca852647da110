// services/errors.go
package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSlotConflict       = errors.New("slot conflict")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrAlreadyLinked      = errors.New("already linked")
	ErrGatewayFailure     = errors.New("gateway failure")
)

// SlotConflictError carries the slot that was already taken.
type SlotConflictError struct {
	ProviderID uuid.UUID
	Date       string
	Time       string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("provider %s already booked at %s %s", e.ProviderID, e.Date, e.Time)
}

func (e *SlotConflictError) Unwrap() error {
	return ErrSlotConflict
}

// InvalidTransitionError reports an illegal status change.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition appointment from %q to %q", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidState
}

// InsufficientPointsError reports a redemption below balance.
type InsufficientPointsError struct {
	Balance  int
	Required int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: have %d, need %d", e.Balance, e.Required)
}

func (e *InsufficientPointsError) Unwrap() error {
	return ErrInsufficientPoints
}

// HTTPStatus maps a service error to the status code controllers respond with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrAlreadyLinked):
		return http.StatusConflict
	case errors.Is(err, ErrSlotConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientPoints), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrGatewayFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
