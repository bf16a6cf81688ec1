package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is a client-local validation failure. Its message is
// user-facing and is raised before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a validation error with a user-facing message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a client-local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validation errors. Messages match what the forms show to the user.
var (
	ErrMissingRequiredFields   = NewValidationError("Please fill in all required fields")
	ErrEmailInvalid            = NewValidationError("Please enter a valid email address")
	ErrPasswordTooShort        = NewValidationError("Password must be at least 6 characters long")
	ErrPasswordMismatch        = NewValidationError("Passwords do not match")
	ErrInvalidPaymentMethod    = NewValidationError("Please choose a valid payment method")
	ErrNoRankSelected          = NewValidationError("Please select at least one taxi rank")
	ErrRejectionReasonRequired = NewValidationError("Please provide a reason for rejection")
	ErrReasonRequired          = NewValidationError("Please provide a reason for the request")
)

// InvalidRankCodesError names the selected codes that are not in the most
// recent available-ranks snapshot.
func InvalidRankCodesError(codes []string) *ValidationError {
	return NewValidationError(fmt.Sprintf("Invalid rank codes selected: %s", strings.Join(codes, ", ")))
}

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthInvalid        = errors.New("authentication is no longer valid")
	ErrNoActiveSession    = errors.New("no active session")
	ErrOperationInFlight  = errors.New("operation already in flight")
)

// Storage errors
var (
	ErrCredentialsNotFound   = errors.New("credentials not found")
	ErrCredentialsIncomplete = errors.New("stored credentials incomplete")
)

// Workflow errors
var (
	ErrInvalidTransition    = errors.New("invalid request status transition")
	ErrRequestTerminal      = errors.New("request has already been reviewed")
	ErrRequestNotFound      = errors.New("registration request not found")
	ErrStaleRankSelection   = errors.New("selected rank is no longer available")
	ErrAdminRecordMissing   = errors.New("admin record missing, please log in again")
	ErrPermissionDenied     = errors.New("operation not permitted for this role")
	ErrConfirmationDeclined = errors.New("confirmation declined")
)
