package database

import "errors"

// Store error taxonomy. NotFound surfaces as a normal user-facing message;
// WriteFailed and Unavailable are transient and the caller keeps any
// in-memory drafts for retry.
var (
	// ErrNotFound indicates the requested record does not exist or is not
	// owned by the requesting user
	ErrNotFound = errors.New("record not found")
	// ErrWriteFailed indicates a write could not be completed
	ErrWriteFailed = errors.New("write failed")
	// ErrUnavailable indicates the store cannot currently be reached
	ErrUnavailable = errors.New("store unavailable")
)
