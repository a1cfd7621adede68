package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType is the broad category of an application error. Handlers map it
// to a transport status.
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates invalid caller input
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeAmbiguous indicates the input matched more than one resource
	ErrorTypeAmbiguous ErrorType = "AMBIGUOUS"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from an external collaborator
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// Code names the specific condition inside a category.
type Code string

const (
	CodeFacilityNotFound  Code = "FACILITY_NOT_FOUND"
	CodeAmbiguousFacility Code = "AMBIGUOUS_FACILITY"
	CodeInvalidBloodType  Code = "INVALID_BLOOD_TYPE"
	CodeInvalidRegion     Code = "INVALID_REGION"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeInternal          Code = "INTERNAL"
	CodeExternal          Code = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Code    Code
	Message string
	// Details carries remediation data for the caller, e.g. the candidate
	// facilities of an ambiguous lookup.
	Details interface{}
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// NewFacilityNotFoundError signals that a facility query matched nothing.
// available lists facility names the caller can pick from instead.
func NewFacilityNotFoundError(query string, available []string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeFacilityNotFound,
		Message: fmt.Sprintf("facility %q not found", query),
		Details: available,
	}
}

// NewAmbiguousFacilityError signals that a facility query matched several
// facilities; candidates is returned to the caller unchanged.
func NewAmbiguousFacilityError(query string, candidates interface{}, count int) *AppError {
	return &AppError{
		Type:    ErrorTypeAmbiguous,
		Code:    CodeAmbiguousFacility,
		Message: fmt.Sprintf("facility %q matches %d facilities, use a more specific name", query, count),
		Details: candidates,
	}
}

// NewInvalidBloodTypeError signals an unknown blood type.
func NewInvalidBloodTypeError(value string, accepted []string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    CodeInvalidBloodType,
		Message: fmt.Sprintf("invalid blood type %q", value),
		Details: accepted,
	}
}

// NewInvalidRegionError signals a region missing from the facility directory.
func NewInvalidRegionError(value string, known []string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    CodeInvalidRegion,
		Message: fmt.Sprintf("unknown region %q", value),
		Details: known,
	}
}

// NewValidationError creates a generic validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    CodeInvalidArgument,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external collaborator error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Code:    CodeExternal,
		Message: message,
		Err:     err,
	}
}
