package transfer

import "errors"

var (
	// ErrDuplicateFingerprint signals that a live inbox entry already exists
	// for a fingerprint. The orchestrator surfaces it as "skipped", never as
	// a caller-visible error.
	ErrDuplicateFingerprint = errors.New("duplicate fingerprint")

	// ErrEntryNotFound signals a missing inbox entry: never staged, already
	// accepted, or lost to a concurrent accept.
	ErrEntryNotFound = errors.New("inbox entry not found")

	// ErrForbidden signals that the entry belongs to a different facility
	// than the caller's.
	ErrForbidden = errors.New("entry belongs to another facility")
)

// Failure reasons reported per record in a batch result.
const (
	ReasonUnauthorized       = "unauthorized"
	ReasonNotFound           = "not_found"
	ReasonInvalidDestination = "invalid_destination"
	ReasonTransferError      = "transfer_error"
)
