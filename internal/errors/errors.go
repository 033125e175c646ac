// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInsufficientData = errors.New("insufficient trade history")
	ErrPatternNotFound  = errors.New("pattern not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDatabaseError    = errors.New("database error")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrPassInProgress   = errors.New("analysis pass already in progress")
)

// InsufficientDataError indicates fewer trades than the minimum sample size.
// It is non-fatal: callers map it to the defined "insufficient data" result
// rather than failing the pass.
type InsufficientDataError struct {
	UserID     string
	TradeCount int
	MinSample  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for user %s: %d trades, need at least %d", e.UserID, e.TradeCount, e.MinSample)
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(userID string, tradeCount, minSample int) *InsufficientDataError {
	return &InsufficientDataError{
		UserID:     userID,
		TradeCount: tradeCount,
		MinSample:  minSample,
	}
}

// PersistenceError represents a store read/write failure. It is fatal to the
// current pass: the surrounding transaction rolls back and the error
// propagates to the caller.
type PersistenceError struct {
	Operation string
	UserID    string
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.UserID != "" {
		return fmt.Sprintf("persistence error [%s] user %s: %v", e.Operation, e.UserID, e.Err)
	}
	return fmt.Sprintf("persistence error [%s]: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(operation, userID string, err error) *PersistenceError {
	return &PersistenceError{
		Operation: operation,
		UserID:    userID,
		Err:       err,
	}
}

// ValidationError represents malformed input, rejected before any data
// access happens.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// AnalyzerError represents a failure inside a single pattern analyzer. A
// failing analyzer is isolated; the rest of the pass proceeds.
type AnalyzerError struct {
	Analyzer string
	Err      error
}

func (e *AnalyzerError) Error() string {
	return fmt.Sprintf("analyzer error [%s]: %v", e.Analyzer, e.Err)
}

func (e *AnalyzerError) Unwrap() error {
	return e.Err
}

// NewAnalyzerError creates a new AnalyzerError.
func NewAnalyzerError(analyzer string, err error) *AnalyzerError {
	return &AnalyzerError{
		Analyzer: analyzer,
		Err:      err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
