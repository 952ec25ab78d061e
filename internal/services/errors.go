package services

import (
	"errors"
	"fmt"

	"github.com/saksham-ndma/training-service/internal/repositories"
	"github.com/saksham-ndma/training-service/internal/validator"
)

// Sentinel errors for missing resources
var (
	ErrSessionNotFound  = errors.New("training session not found")
	ErrDistrictNotFound = errors.New("district not found")
	ErrUserNotFound     = errors.New("user not found")
)

// PermissionError is returned when a principal is denied an action on a
// resource it can see. Deliberately distinct from the not-found errors:
// a denial confirms the resource exists.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s denied %s on %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ConflictError is returned when a concurrent writer invalidated the caller's
// snapshot; the caller should re-read and retry.
type ConflictError struct {
	Resource   string
	ResourceID uint
	Message    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %d: %s", e.Resource, e.ResourceID, e.Message)
}

func NewConflictError(resource string, resourceID uint, message string) *ConflictError {
	return &ConflictError{
		Resource:   resource,
		ResourceID: resourceID,
		Message:    message,
	}
}

// StoreError wraps infrastructure failures so handlers can map them to 503
// instead of leaking driver errors.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// ===== ERROR PREDICATES =====

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrDistrictNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		repositories.IsNotFoundError(err)
}

func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}
