package admission

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrCodeInvalid       = errors.New("access code not recognized")
	ErrModuleInactive    = errors.New("module is not active")
	ErrInvalidGrantInput = errors.New("grant needs a module and a student id")
	ErrNoGrant           = errors.New("no admission grant for this module")
	ErrValidation        = errors.New("exactly one consent option must be selected")
	ErrTransport         = errors.New("request failed")
	ErrBusy              = errors.New("a request is already in progress")
	ErrStaleFlow         = errors.New("admission flow was abandoned")
	// the server no longer accepts the student's credential
	ErrCredentialExpired = errors.New("credential expired")
)

// StatusCoder is implemented by transport errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

func statusOf(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}

func transportError(err error) error {
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// requestError classifies a failed consent request: a rejected credential
// ends the grant, anything else is retryable.
func requestError(err error) error {
	if status, ok := statusOf(err); ok && status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", ErrCredentialExpired, err)
	}
	return transportError(err)
}

// lookupError classifies a failed module lookup. Only the server's explicit
// answers become CodeInvalid, ModuleInactive or CredentialExpired, everything
// else is retryable.
func lookupError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return transportError(err)
	}
	status, ok := statusOf(err)
	if !ok {
		return transportError(err)
	}
	switch status {
	case http.StatusNotFound, http.StatusBadRequest:
		return fmt.Errorf("%w: %w", ErrCodeInvalid, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrModuleInactive, err)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrCredentialExpired, err)
	default:
		return transportError(err)
	}
}

// Guidance is the message shown to the student for a failed step.
func Guidance(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCodeInvalid):
		return "That access code was not recognized. Check the code with your instructor and try again."
	case errors.Is(err, ErrModuleInactive):
		return "This module is not open right now. Please contact your instructor."
	case errors.Is(err, ErrValidation):
		return "Please choose one of the consent options."
	case errors.Is(err, ErrBusy):
		return "Please wait for the current request to finish."
	case errors.Is(err, ErrCredentialExpired):
		return "Your sign-in has expired. Please sign in again and re-enter the access code."
	case errors.Is(err, ErrNoGrant):
		return "Enter the module's access code to continue."
	case errors.Is(err, ErrTransport):
		return "Could not reach the server. Please try again."
	case errors.Is(err, ErrStaleFlow):
		return "This attempt was cancelled."
	default:
		return "Something went wrong. Please start again."
	}
}
