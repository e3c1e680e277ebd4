package leads

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is returned when the name is invalid
	ErrInvalidName = errors.New("name is required")

	// ErrMissingPhone is returned when the deployment requires a phone number
	ErrMissingPhone = errors.New("phone is required")

	ErrInvalidPriority = errors.New("priority must be High, Medium or Low")
	ErrInvalidPlatform = errors.New("platform must be Instagram, WhatsApp, Call or Gmail")
	ErrInvalidLeadType = errors.New("lead type must be B2C, B2B or Collaborator")
	ErrInvalidSubType  = errors.New("lead sub-type is not valid for the lead type")
	ErrInvalidClock    = errors.New("follow-up time is invalid")
	ErrInvalidAmount   = errors.New("amount must be a number")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)

// ValidationError is a rejected field, raised before any store call.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("leads: invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError wraps a record store failure. Timeout is set when the
// store call exceeded its deadline.
type PersistenceError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("leads: %s timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("leads: %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsPersistence reports whether err is a PersistenceError.
func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}

// IsTimeout reports whether err is a PersistenceError caused by a deadline.
func IsTimeout(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target) && target.Timeout
}

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrLeadNotFound) || IsPersistence(err) {
		return err
	}
	return &PersistenceError{
		Op:      op,
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}
