package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrAttachmentsDisabled = errors.New("attachments are not configured")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email has already been taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrConsistency is matched by every *ConsistencyError.
	ErrConsistency = errors.New("ledger consistency violated")
)

// ValidationError collects field-level messages for rejected input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Merge copies all messages of other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Fields {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
}

// HasErrors reports whether any field message was recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Err returns e as an error, or nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+" "+strings.Join(e.Fields[field], ", "))
	}

	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConsistencyError reports that a balance adjustment could not be applied to
// the owning account. The transaction that triggered it has been rolled back.
type ConsistencyError struct {
	AccountID string
	Op        string
	Err       error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s on account %s: %v", ErrConsistency, e.Op, e.AccountID, e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrConsistency) true.
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrConsistency
}
