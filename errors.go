package camperpack

import (
	"errors"
	"fmt"
)

// Common errors returned by the CamperPack client.
var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidKind is returned when an unknown entity kind is used.
	ErrInvalidKind = errors.New("invalid entity kind")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrOffline is returned when a network operation is attempted while offline.
	ErrOffline = errors.New("operation unavailable while offline")

	// ErrSyncInFlight is returned when a sync cycle is already running.
	ErrSyncInFlight = errors.New("sync already in progress")

	// ErrVisionUnavailable is returned when no vision API key is configured.
	ErrVisionUnavailable = errors.New("vision identification not configured")

	// ErrVisionUnparseable is returned when the vision model's reply
	// contains no usable JSON. Callers degrade to zero guesses.
	ErrVisionUnparseable = errors.New("vision response could not be parsed")
)

// ValidationError is returned when a configuration field or entity
// field fails validation. Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// SyncError is returned when a remote sync operation fails with details.
// Extractable via errors.As(). Supports Unwrap().
type SyncError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync: %s failed (status %d): %v", e.Operation, e.StatusCode, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
