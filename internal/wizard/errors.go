package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned when a field path has no registered setter.
	ErrUnknownField = errors.New("unknown form field")

	// ErrInvalidValue is returned when a field value cannot be parsed.
	ErrInvalidValue = errors.New("invalid field value")

	// ErrNotSubmittable is returned when Submit is called outside the Idle state.
	ErrNotSubmittable = errors.New("submission already in progress or finished")

	// ErrNoCallbackPending is returned when a payment callback arrives while no
	// payment is pending for the session.
	ErrNoCallbackPending = errors.New("no payment pending for session")
)

// ErrorMap maps a field path (e.g. "residentialAddress.city") to a
// human-readable message. It is recomputed in full on every validation-gate
// run and cleared per field as values change.
type ErrorMap map[string]string

// ValidationError carries the field-level errors that blocked an operation.
// It never involves the network; the user fixes the fields and retries.
type ValidationError struct {
	Fields ErrorMap
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// FileIntakeError is a rejected document upload. Recoverable: the slot keeps
// its previous content and the next valid selection clears the error.
type FileIntakeError struct {
	Slot    string
	Message string
}

func (e *FileIntakeError) Error() string {
	return fmt.Sprintf("document %s rejected: %s", e.Slot, e.Message)
}

// RemoteCallError is a failed collaborator call. The server's message is kept
// verbatim when present; callers surface it and never retry automatically.
type RemoteCallError struct {
	Op      string
	Message string
	Err     error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// StateRecoveryError means the payment-callback seller-id recovery exhausted
// the query parameter, stored state and the reference string itself. Terminal:
// the user is directed to support with the raw reference.
type StateRecoveryError struct {
	Reference string
}

func (e *StateRecoveryError) Error() string {
	return fmt.Sprintf("could not recover seller account for payment reference %q; contact support", e.Reference)
}
