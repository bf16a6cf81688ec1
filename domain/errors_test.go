package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsValidation(t *testing.T) {
	if !IsValidation(ErrEmailInvalid) {
		t.Error("ErrEmailInvalid is a validation error")
	}
	if !IsValidation(fmt.Errorf("submit: %w", ErrPasswordTooShort)) {
		t.Error("wrapped validation errors should still be recognised")
	}
	if IsValidation(ErrInvalidCredentials) {
		t.Error("auth errors are not validation errors")
	}
	if IsValidation(nil) {
		t.Error("nil is not a validation error")
	}
}

func TestInvalidRankCodesError(t *testing.T) {
	err := InvalidRankCodesError([]string{"PTA", "JHB"})
	if err.Message != "Invalid rank codes selected: PTA, JHB" {
		t.Errorf("unexpected message: %s", err.Message)
	}
	if !IsValidation(err) {
		t.Error("stale rank codes are a client-local validation failure")
	}
}

func TestWorkflowErrorsAreDistinct(t *testing.T) {
	// The dangling-admin case steers the user to reauthenticate; it must
	// never be conflated with the stale-selection case, which invites a
	// re-fetch of available ranks.
	if errors.Is(ErrAdminRecordMissing, ErrStaleRankSelection) {
		t.Error("workflow error classes must be distinguishable")
	}
	if errors.Is(ErrRequestTerminal, ErrInvalidTransition) {
		t.Error("terminal review and illegal transition are separate failures")
	}
}
