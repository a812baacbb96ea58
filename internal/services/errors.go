package services

import "errors"

// Sentinels the handler layer maps onto HTTP statuses.
var (
	ErrNotFound            = errors.New("not found")
	ErrNotOwned            = errors.New("not owned by user")
	ErrMalformedAnswerJSON = errors.New("malformed answer JSON")
)
