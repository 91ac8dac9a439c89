package repo

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	// It aliases gorm.ErrRecordNotFound for consistency across layers.
	ErrNotFound = gorm.ErrRecordNotFound

	// ErrUniqueViolation is matched by every *UniqueViolationError.
	ErrUniqueViolation = errors.New("unique constraint violated")

	// ErrEmptyCriteria is returned by multi-row queries called without criteria.
	ErrEmptyCriteria = errors.New("criteria must not be empty")

	// ErrUnknownField is returned when a criteria or values map names a
	// column the model does not have.
	ErrUnknownField = errors.New("unknown field")
)

// UniqueViolationError reports an insert that breached a uniqueness rule.
type UniqueViolationError struct {
	Table string
	Err   error
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("%s: unique constraint violated: %v", e.Table, e.Err)
}

// Unwrap exposes the driver error.
func (e *UniqueViolationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUniqueViolation) hold.
func (e *UniqueViolationError) Is(target error) bool { return target == ErrUniqueViolation }

// isUniqueViolation matches translated and untranslated driver errors.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value violates unique constraint")
}

// IsUniqueViolation reports whether err is a uniqueness breach.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation) || isUniqueViolation(err)
}
