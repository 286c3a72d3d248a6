package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission
	// for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a uniqueness constraint is violated.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when login or token validation fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
)

// ValidationError captures field level validation issues that callers can
// surface to users as a per-field message map.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// RuleError is a business-rule violation carrying a human readable message,
// such as an incomplete professional roster or a forbidden status transition.
type RuleError struct {
	Message string
}

// Error implements the error interface.
func (r *RuleError) Error() string {
	if r == nil {
		return ""
	}
	return r.Message
}

// ConflictError is a uniqueness conflict with an entity specific message.
type ConflictError struct {
	Message string
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	return c.Message
}

// Unwrap lets callers match ConflictError with errors.Is(err, ErrAlreadyExists).
func (c *ConflictError) Unwrap() error {
	return ErrAlreadyExists
}
