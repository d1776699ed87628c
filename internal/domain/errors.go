package domain

import "errors"

var (
	// ErrInvalidDate indicates the target date does not parse as a real
	// calendar date in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInputUnavailable indicates the input log file cannot be opened or read.
	ErrInputUnavailable = errors.New("input unavailable")

	// ErrOutputUnavailable indicates the output sink cannot be created or written.
	ErrOutputUnavailable = errors.New("output unavailable")
)
