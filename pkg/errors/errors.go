// Package errors provides the typed errors of the eventmap pipeline.
//
// Malformed input records are fatal and surface as RecordError or
// ValidationError (both match ErrInvalidInput). Configuration problems are
// ConfigError. The file layer reports ParseError, IOError and, for missing
// inputs, NotFoundError. A failed publishing gate is a GateError.
package errors

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCategories indicates the asset catalog yields no allowed categories
	ErrNoCategories = errors.New("no allowed categories")

	// ErrDuplicateEvent indicates two records share an event id
	ErrDuplicateEvent = errors.New("duplicate event id")

	ErrGateFailed = errors.New("validation gate failed")
)

// NotFoundError reports a missing input such as an asset catalog file.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents an invalid value outside a specific record:
// a flag, a timestamp, an option.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// RecordError identifies a single malformed input record.
// Index is the record's position in its batch, or -1 when unknown.
type RecordError struct {
	Source  string
	Index   int
	EventID string
	Field   string
	Message string
	Err     error
}

func (e *RecordError) Error() string {
	where := e.Source
	if where == "" {
		where = "events"
	}
	if e.Index >= 0 {
		where = fmt.Sprintf("%s[%d]", where, e.Index)
	}
	if e.EventID != "" {
		where = fmt.Sprintf("%s (%s)", where, e.EventID)
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid record %s: %s: %s", where, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid record %s: %s", where, e.Message)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func (e *RecordError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewRecordError creates a new RecordError
func NewRecordError(source string, index int, eventID, field, message string) *RecordError {
	return &RecordError{
		Source:  source,
		Index:   index,
		EventID: eventID,
		Field:   field,
		Message: message,
	}
}

// ConfigError represents a configuration error. Component names the
// setting or file at fault (rules, stage_order, categories).
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// GateError reports the validation gates that failed after a build.
type GateError struct {
	Failures []string
}

func (e *GateError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("validation gate failed: %s", e.Failures[0])
	}
	return fmt.Sprintf("%d validation gates failed: %v", len(e.Failures), e.Failures)
}

func (e *GateError) Is(target error) bool {
	return target == ErrGateFailed
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError reports whether err is a ValidationError or RecordError.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// ParseError represents a JSON or YAML document that could not be decoded.
type ParseError struct {
	Format  string
	File    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents a failed read, write or rename.
type IOError struct {
	Operation string
	Path      string
	Message   string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
