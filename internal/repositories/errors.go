package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrAlreadyFinalized is returned by AttemptRepository.Finalize when the
// submission timestamp was already set by a concurrent submit.
var ErrAlreadyFinalized = errors.New("attempt already finalized")

// IsNotFoundError reports whether err is the driver's record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err is a unique-constraint violation.
// Requires the postgres driver's TranslateError option.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
