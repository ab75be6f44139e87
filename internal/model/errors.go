package model

import "errors"

var (
	// ErrAuthFailure is returned for credentials that do not match an account.
	// It never says which field was wrong.
	ErrAuthFailure = errors.New("invalid credentials")

	// ErrOperationInFlight rejects a second operation while one is pending.
	ErrOperationInFlight = errors.New("operation already in flight")

	// ErrIncompleteSelection blocks preference submission.
	ErrIncompleteSelection = errors.New("incomplete selection")

	// ErrRemoteFailure covers non-success codes and transport errors.
	ErrRemoteFailure = errors.New("remote failure")

	// ErrMalformedResponse is a payload missing its expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrInvalidReview   = errors.New("invalid review")
	ErrInvalidCatalog  = errors.New("invalid catalog entry")
)
