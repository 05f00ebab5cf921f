// Package services defines the business logic for match requests, matches,
// chat summaries, messages, profiles, and the AI assistant. This file
// centralizes the service-level error values so handlers can map them to
// HTTP results consistently.
package services

import "errors"

// Validation errors.
var (
	// ErrMissingFields is returned when a required input is blank.
	ErrMissingFields = errors.New("missing fields")

	// ErrMissingUser is returned when a user identifier is required but absent.
	ErrMissingUser = errors.New("userId required")

	// ErrSelfRequest is returned when a user sends a request to themselves.
	ErrSelfRequest = errors.New("cannot send a request to yourself")

	// ErrInvalidMessageType is returned for message types other than
	// text, image, or audio.
	ErrInvalidMessageType = errors.New("type must be one of text, image, audio")

	// ErrNoMessageIDs is returned when a receipt update names no messages.
	ErrNoMessageIDs = errors.New("ids array required")

	// ErrEmptyPrompt is returned when an assistant prompt is blank.
	ErrEmptyPrompt = errors.New("prompt required")

	// ErrEmptyUpload is returned when an uploaded file has no content.
	ErrEmptyUpload = errors.New("file is empty")
)

// Lookup errors.
var (
	ErrRequestNotFound = errors.New("request not found")
	ErrMatchNotFound   = errors.New("match not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrMessageNotFound = errors.New("message not found")
)

// Permission and state errors.
var (
	// ErrNotRecipient is returned when someone other than the recipient
	// responds to a request.
	ErrNotRecipient = errors.New("only the recipient can respond to this request")

	// ErrNotParticipant is returned when a message names users that are not
	// the two parties of its match.
	ErrNotParticipant = errors.New("sender and receiver must be the match participants")

	// ErrRequestResolved is returned when a terminal request is asked to move
	// to the other terminal status.
	ErrRequestResolved = errors.New("request already responded to")

	// ErrProfileExists is returned when a profile for the user already exists.
	ErrProfileExists = errors.New("profile already exists")

	// ErrStorageDisabled is returned when no object store is configured.
	ErrStorageDisabled = errors.New("object storage not configured")
)

// StoreError wraps a persistence failure that is not a plain "not found".
// Handlers pass the wrapped error text through to the client.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

// Unwrap exposes the underlying store error.
func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
