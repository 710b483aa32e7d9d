package matcher

import "errors"

var (
	// ErrInvalidConfiguration is returned for tolerance, threshold or
	// strategy values outside their allowed range.
	ErrInvalidConfiguration = errors.New("invalid match configuration")

	// ErrMalformedTransaction is returned when a transaction reaching the
	// scorer lacks a usable date or amount.
	ErrMalformedTransaction = errors.New("malformed transaction")
)
