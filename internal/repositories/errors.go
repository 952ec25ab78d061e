package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist. Store failures are
// surfaced unmodified so callers can distinguish an absent row from an
// unavailable store.
var ErrNotFound = errors.New("record not found")

// ErrVersionConflict is returned by compare-and-swap writes when the stored
// row version no longer matches the caller's snapshot.
var ErrVersionConflict = errors.New("version conflict")

// IsNotFoundError reports whether err means the record is absent.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
