package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSlotConflict      = errors.New("time slot already booked")
	ErrInvalidTransition = errors.New("status change not allowed")
	ErrNotFound          = errors.New("not found")
	ErrPersistence       = errors.New("booking store unavailable")
	ErrConflict          = errors.New("booking was changed by someone else")
	ErrForbidden         = errors.New("not allowed for this user")
	// ErrUnavailable is returned by the slot resolver when bookings cannot be read.
	ErrUnavailable = errors.New("booked slots unavailable")
)

// ValidationError lists the rejected input fields and why.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, e.FieldErrors[f])
	}
	return "invalid booking: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string]string)
	}
	e.FieldErrors[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.FieldErrors) == 0 {
		return nil
	}
	return e
}

func newValidationError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.add(field, msg)
	return e
}
